package media

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vidpress/internal/logging"
	"vidpress/internal/metrics"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultWidth is the thumbnail width when the caller does not ask for one.
	DefaultWidth = 320
	// MaxWidth caps requested thumbnail widths.
	MaxWidth = 1280

	jpegQuality = 80
)

// Generator produces and caches JPEG thumbnails.
type Generator struct {
	cacheDir string
	ffmpeg   string
	enabled  bool
	mu       sync.Mutex

	// extract is swappable in tests.
	extract func(ctx context.Context, path string, position float64) ([]byte, error)
}

// NewGenerator creates a thumbnail generator. When disabled, Thumbnail
// returns an error immediately.
func NewGenerator(cacheDir, ffmpegBinary string, enabled bool) *Generator {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if enabled {
		logging.Debug("Thumbnail generator enabled, cache dir: %s", cacheDir)
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			logging.Warn("failed to create thumbnail cache dir: %v", err)
		}
	} else {
		logging.Debug("Thumbnail generator disabled")
	}

	g := &Generator{
		cacheDir: cacheDir,
		ffmpeg:   ffmpegBinary,
		enabled:  enabled,
	}
	g.extract = g.extractFrame
	return g
}

// Enabled reports whether thumbnail generation is available.
func (g *Generator) Enabled() bool {
	return g.enabled
}

// cacheKey names the cached thumbnail for one (source, position, width).
func cacheKey(path string, position float64, width int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%.3f|%d", path, position, width)))
	return fmt.Sprintf("%x.jpg", sum)
}

// Thumbnail returns JPEG bytes for a frame of path at position seconds,
// resized to width. Results are cached on disk.
func (g *Generator) Thumbnail(ctx context.Context, path string, position float64, width int) ([]byte, error) {
	if !g.enabled {
		return nil, fmt.Errorf("thumbnails disabled")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source not accessible: %w", err)
	}

	if width <= 0 {
		width = DefaultWidth
	}
	if width > MaxWidth {
		width = MaxWidth
	}
	if position < 0 {
		position = 1
	}

	cachePath := filepath.Join(g.cacheDir, cacheKey(path, position, width))
	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		logging.Debug("Thumbnail cache hit: %s", path)
		return data, nil
	}
	metrics.ThumbnailCacheMisses.Inc()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Another request may have generated it while we waited for the lock.
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	start := time.Now()
	data, err := g.generate(ctx, path, position, width)
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())

	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		logging.Warn("failed to cache thumbnail %s: %v", cachePath, err)
	}
	return data, nil
}

func (g *Generator) generate(ctx context.Context, path string, position float64, width int) ([]byte, error) {
	var frame []byte
	if isImageSource(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image source: %w", err)
		}
		frame = data
	} else {
		data, err := g.extract(ctx, path, position)
		if err != nil {
			return nil, fmt.Errorf("frame extraction failed: %w", err)
		}
		frame = data
	}

	// vips shrinks during decode; the pure-Go path decodes full size first.
	if data, err := thumbnailWithVips(frame, width); err == nil {
		return data, nil
	}

	img, err := decodeFrame(frame, path)
	if err != nil {
		return nil, err
	}

	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeFrame decodes raw frame or image bytes, trying imaging first for
// auto-orientation, then the registered stdlib decoders.
func decodeFrame(frame []byte, path string) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(frame), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	logging.Debug("imaging decode failed for %s: %v, trying stdlib decoders", path, err)

	img, format, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame for %s: %w", path, err)
	}
	logging.Debug("Decoded %s frame as %s", path, format)
	return img, nil
}

// extractFrame pulls one PNG frame out of a video via ffmpeg. When seeking
// to position fails (sources shorter than the seek point), it retries from
// the start.
func (g *Generator) extractFrame(ctx context.Context, path string, position float64) ([]byte, error) {
	args := []string{
		"-ss", fmt.Sprintf("%.3f", position),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}

	out, err := g.runFFmpeg(ctx, args)
	if err == nil && len(out) > 0 {
		return out, nil
	}
	logging.Debug("frame seek failed for %s at %.3fs, retrying from start: %v", path, position, err)

	out, err = g.runFFmpeg(ctx, []string{
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame for %s", path)
	}
	return out, nil
}

func (g *Generator) runFFmpeg(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.ffmpeg, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func isImageSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}
