// Package engine wraps ffmpeg and ffprobe in cancellable, progress-reporting
// tasks.
//
// The Runner interface is the seam between the job layer and the actual
// encoder: production code uses FFmpegRunner, tests inject fakes. Progress
// is parsed from ffmpeg's -progress key/value stream against the probed
// source duration; cancellation rides the task context and kills the child
// process as soon as practical.
package engine
