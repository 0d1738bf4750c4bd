package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"vidpress/internal/logging"
	"vidpress/internal/preset"
)

// Task describes one transcode for the encoder.
type Task struct {
	SourcePath string
	DestPath   string
	Preset     preset.Preset
	Format     preset.Format
	// Duration is the probed source duration in seconds; it is the
	// denominator for fractional progress. Zero disables progress parsing.
	Duration float64
}

// ProgressFunc receives raw fractional progress from the encoder.
// Values may repeat or arrive rapidly; the progress emitter cleans them.
type ProgressFunc func(fraction float64)

// Runner executes transcode tasks. Production code uses FFmpegRunner;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, task Task, onProgress ProgressFunc) error
}

// FFmpegRunner runs tasks through the ffmpeg binary.
type FFmpegRunner struct {
	binary    string
	processes map[string]*exec.Cmd
	processMu sync.Mutex
}

// NewFFmpegRunner creates a runner. An empty binary path means "ffmpeg"
// on PATH.
func NewFFmpegRunner(binary string) *FFmpegRunner {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegRunner{
		binary:    binary,
		processes: make(map[string]*exec.Cmd),
	}
}

// buildArgs translates a task into an ffmpeg argument list.
func buildArgs(task Task) []string {
	p := task.Preset

	args := []string{
		"-y",
		"-i", task.SourcePath,
		"-c:v", p.VideoCodec,
		"-b:v", p.VideoBitrate,
		"-maxrate", p.VideoBitrate,
		"-c:a", p.AudioCodec,
		"-b:a", p.AudioBitrate,
	}

	// CRF and speed presets apply to the x264/x265 family; VP9 takes CRF
	// through the same flag but has no -preset.
	if p.Speed != "" && strings.HasPrefix(p.VideoCodec, "libx") {
		args = append(args, "-preset", p.Speed)
	}
	if p.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(p.CRF))
	}

	if p.MaxHeight > 0 {
		// Downscale only; never upscale a smaller source. Width stays
		// divisible by two for the encoders.
		args = append(args, "-vf", fmt.Sprintf("scale=-2:'min(%d,ih)'", p.MaxHeight))
	}

	switch task.Format {
	case preset.FormatMP4, preset.FormatMOV:
		args = append(args, "-movflags", "+faststart")
	}

	args = append(args,
		"-f", task.Format.MuxerName(),
		"-progress", "pipe:1",
		"-nostats",
		"-v", "error",
		task.DestPath,
	)

	return args
}

// Run executes the task, feeding raw progress to onProgress. The caller is
// responsible for terminal progress semantics; Run only reports what the
// encoder says.
func (r *FFmpegRunner) Run(ctx context.Context, task Task, onProgress ProgressFunc) error {
	if info, err := os.Stat(task.SourcePath); err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidSource, task.SourcePath)
	}

	cmd := exec.CommandContext(ctx, r.binary, buildArgs(task)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %v", ErrUnknown, err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}

	r.processMu.Lock()
	r.processes[task.SourcePath] = cmd
	r.processMu.Unlock()

	defer func() {
		r.processMu.Lock()
		delete(r.processes, task.SourcePath)
		r.processMu.Unlock()
	}()

	r.consumeProgress(stdout, task.Duration, onProgress)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ErrCanceled
		}
		detail := stderrTail(stderr.String())
		logging.Error("ffmpeg failed for %s: %s", task.SourcePath, detail)
		if detail == "" {
			return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
		}
		return fmt.Errorf("%w: %s", ErrEncodingFailed, detail)
	}

	// A zero exit with no usable output still fails the job.
	if info, err := os.Stat(task.DestPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: encoder produced no output at %s", ErrUnknown, task.DestPath)
	}

	return nil
}

// consumeProgress parses ffmpeg's -progress key/value stream. Lines look
// like "out_time_us=1234567" and blocks end with "progress=continue|end".
func (r *FFmpegRunner) consumeProgress(stdout io.Reader, duration float64, onProgress ProgressFunc) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch key {
		case "out_time_us", "out_time_ms":
			if onProgress == nil || duration <= 0 {
				continue
			}
			us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil || us < 0 {
				continue
			}
			onProgress((float64(us) / 1e6) / duration)
		case "progress":
			if strings.TrimSpace(value) == "end" && onProgress != nil {
				onProgress(1)
			}
		}
	}
}

// Cleanup kills every tracked encoder process. Called on shutdown.
func (r *FFmpegRunner) Cleanup() {
	r.processMu.Lock()
	defer r.processMu.Unlock()

	for path, cmd := range r.processes {
		if cmd.Process != nil {
			logging.Info("Killing transcode process for: %s", path)
			if err := cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill transcode process for %s: %v", path, err)
			}
		}
	}
}

// stderrTail returns the last non-empty line of encoder stderr, which is
// where ffmpeg puts the actionable message.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
