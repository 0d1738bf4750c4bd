package media

import (
	"fmt"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"vidpress/internal/logging"
)

var (
	vipsMu          sync.Mutex
	vipsInitialized bool
	vipsAvailable   bool
)

// InitVips starts libvips with conservative memory settings. Call once at
// startup; thumbnail generation falls back to pure-Go resizing when this
// is never called or libvips is unusable.
func InitVips() error {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		return nil
	}

	// Forward vips messages through the leveled logger. Anything below a
	// warning only matters when debugging.
	threshold := vips.LogLevelWarning
	if logging.IsDebugEnabled() {
		threshold = vips.LogLevelInfo
	}
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch {
		case level <= vips.LogLevelError:
			logging.Error("[%s] %s", domain, msg)
		case level == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, threshold)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
	return nil
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable reports whether libvips is initialized.
func IsVipsAvailable() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsAvailable
}

// thumbnailWithVips resizes an in-memory frame to width, preserving aspect
// ratio, and returns JPEG bytes. libvips shrinks during decode, which keeps
// memory flat even for 4K frames.
func thumbnailWithVips(frame []byte, width int) ([]byte, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	ref, err := vips.NewImageFromBuffer(frame)
	if err != nil {
		return nil, fmt.Errorf("vips failed to load frame: %w", err)
	}
	defer ref.Close()

	height := width * ref.Height() / ref.Width()
	if err := ref.Thumbnail(width, height, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	out, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        80,
		OptimizeCoding: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}
	return out, nil
}
