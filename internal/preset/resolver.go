package preset

import "fmt"

// Preset is a concrete bundle of encoder parameters.
type Preset struct {
	Name         string
	VideoCodec   string
	AudioCodec   string
	VideoBitrate string
	AudioBitrate string
	// MaxHeight caps the output height; 0 means keep the source size.
	MaxHeight int
	// Speed is the encoder speed/quality tradeoff (ffmpeg -preset).
	Speed string
	// CRF is the constant rate factor used alongside the bitrate ceiling.
	CRF int
}

// CompatibilityProbe reports whether a preset can be applied to a given
// source. Probes are derived from ffprobe results (e.g. a source shorter
// than a keyframe interval, or smaller than the preset's height cap).
type CompatibilityProbe func(Preset) bool

// Resolver builds ordered preset preference lists per quality and format.
type Resolver struct{}

// NewResolver creates a preset resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// codecsFor returns the video/audio codec pair for a container.
func codecsFor(format Format) (video, audio string) {
	switch format {
	case FormatWebM:
		return "libvpx-vp9", "libopus"
	default:
		return "libx264", "aac"
	}
}

// Candidates returns the preference list for a quality tier and format,
// from most- to least-preferred. The list always terminates in the
// universal fallback, so it is never empty.
func (r *Resolver) Candidates(quality Quality, format Format) []Preset {
	video, audio := codecsFor(format)

	ladder := func(name string, height int, vbr, abr string, speed string, crf int) Preset {
		return Preset{
			Name:         fmt.Sprintf("%s-%s", name, format),
			VideoCodec:   video,
			AudioCodec:   audio,
			VideoBitrate: vbr,
			AudioBitrate: abr,
			MaxHeight:    height,
			Speed:        speed,
			CRF:          crf,
		}
	}

	var candidates []Preset
	switch quality {
	case QualityHigh:
		candidates = []Preset{
			ladder("high-1080", 1080, "8M", "192k", "medium", 18),
			ladder("high-720", 720, "5M", "160k", "medium", 20),
		}
	case QualityLow:
		candidates = []Preset{
			ladder("low-360", 360, "1M", "96k", "fast", 28),
			ladder("low-480", 480, "1500k", "96k", "fast", 26),
		}
	default:
		candidates = []Preset{
			ladder("medium-720", 720, "4M", "128k", "fast", 23),
		}
	}

	return append(candidates, r.Fallback(format))
}

// Fallback returns the guaranteed-available medium-quality preset for a
// format. Every encoder installation that can transcode at all supports it.
func (r *Resolver) Fallback(format Format) Preset {
	video, audio := codecsFor(format)
	return Preset{
		Name:         fmt.Sprintf("fallback-medium-%s", format),
		VideoCodec:   video,
		AudioCodec:   audio,
		VideoBitrate: "4M",
		AudioBitrate: "128k",
		MaxHeight:    720,
		Speed:        "fast",
		CRF:          23,
	}
}

// Resolve picks the first candidate the probe accepts, or the universal
// fallback when none match. A nil probe accepts everything.
func (r *Resolver) Resolve(quality Quality, format Format, probe CompatibilityProbe) Preset {
	candidates := r.Candidates(quality, format)
	if probe == nil {
		return candidates[0]
	}
	for _, p := range candidates {
		if probe(p) {
			return p
		}
	}
	return r.Fallback(format)
}
