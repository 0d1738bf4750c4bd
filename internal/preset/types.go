package preset

import "strings"

// Quality is a coarse quality tier requested by the caller.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// ParseQuality maps a quality string to a tier. Unrecognized values
// degrade to medium rather than failing the request.
func ParseQuality(s string) Quality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "highest", "1080p":
		return QualityHigh
	case "low", "lowest", "360p":
		return QualityLow
	case "medium", "default", "720p":
		return QualityMedium
	default:
		return QualityMedium
	}
}

// Format is a target container format.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatMOV  Format = "mov"
	FormatWebM Format = "webm"
	FormatMKV  Format = "mkv"
)

// formatAliases maps containers we do not emit to the nearest one we do.
// MOV and MP4 share the ISO base media layout; everything legacy lands on
// MP4 for compatibility.
var formatAliases = map[string]Format{
	"mp4":  FormatMP4,
	"m4v":  FormatMP4,
	"mov":  FormatMOV,
	"qt":   FormatMOV,
	"webm": FormatWebM,
	"mkv":  FormatMKV,
	"avi":  FormatMP4,
	"wmv":  FormatMP4,
	"flv":  FormatMP4,
	"mpg":  FormatMP4,
	"mpeg": FormatMP4,
	"3gp":  FormatMP4,
	"ts":   FormatMP4,
	"ogv":  FormatWebM,
}

// ParseFormat maps a container string to a supported Format.
// Unknown containers silently resolve to MP4.
func ParseFormat(s string) Format {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, ".")))
	if f, ok := formatAliases[key]; ok {
		return f
	}
	return FormatMP4
}

// Extension returns the file extension (without dot) for the format.
func (f Format) Extension() string {
	return string(f)
}

// MuxerName returns the ffmpeg muxer name for the format.
func (f Format) MuxerName() string {
	switch f {
	case FormatMOV:
		return "mov"
	case FormatWebM:
		return "webm"
	case FormatMKV:
		return "matroska"
	default:
		return "mp4"
	}
}
