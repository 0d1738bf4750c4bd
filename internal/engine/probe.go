package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"vidpress/internal/logging"
)

// MediaInfo describes a probed source file.
type MediaInfo struct {
	Duration   float64 `json:"duration"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	VideoCodec string  `json:"videoCodec"`
	AudioCodec string  `json:"audioCodec,omitempty"`
	Container  string  `json:"container"`
	Size       int64   `json:"size"`
}

// ffprobe JSON layout, limited to the fields we read.
type probeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Prober extracts media information via ffprobe.
type Prober struct {
	binary string
}

// NewProber creates a prober. An empty binary path means "ffprobe" on PATH.
func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Probe inspects a source file. A missing or unreadable source yields
// ErrInvalidSource; a file ffprobe cannot parse yields ErrInvalidSource as
// well, since it cannot serve as transcode input.
func (p *Prober) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSource, path)
	}

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ErrCanceled
		}
		logging.Debug("ffprobe failed for %s: %v - %s", path, err, stderr.String())
		return nil, fmt.Errorf("%w: ffprobe: %s", ErrInvalidSource, path)
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable ffprobe output for %s", ErrInvalidSource, path)
	}

	mi := &MediaInfo{
		Container: out.Format.FormatName,
		Size:      info.Size(),
	}
	mi.Duration, _ = strconv.ParseFloat(out.Format.Duration, 64)

	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if mi.VideoCodec == "" {
				mi.VideoCodec = s.CodecName
				mi.Width = s.Width
				mi.Height = s.Height
			}
		case "audio":
			if mi.AudioCodec == "" {
				mi.AudioCodec = s.CodecName
			}
		}
	}

	if mi.VideoCodec == "" {
		return nil, fmt.Errorf("%w: no video stream in %s", ErrInvalidSource, path)
	}

	return mi, nil
}
