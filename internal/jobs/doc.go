// Package jobs coordinates transcode work: it accepts requests, resolves
// presets against probed source media, short-circuits through the result
// cache, runs the encoder through a bounded worker pool, and exposes job
// and batch handles with cleaned progress.
//
// Submission never blocks. Every job ends in exactly one terminal state
// (Completed, Failed or Canceled) and delivers exactly one 1.0 progress
// event, whatever the outcome. Batches aggregate member progress into a
// running mean and complete once every member is terminal; failed members
// are logged and omitted from the batch result.
package jobs
