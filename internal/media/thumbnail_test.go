package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("/v/in.mp4", 1.0, 320)
	if a != cacheKey("/v/in.mp4", 1.0, 320) {
		t.Error("cacheKey not deterministic")
	}
	if a == cacheKey("/v/in.mp4", 2.0, 320) {
		t.Error("position not part of the key")
	}
	if a == cacheKey("/v/in.mp4", 1.0, 640) {
		t.Error("width not part of the key")
	}
	if filepath.Ext(a) != ".jpg" {
		t.Errorf("cacheKey = %q, want .jpg suffix", a)
	}
}

func TestThumbnailDisabled(t *testing.T) {
	g := NewGenerator(t.TempDir(), "", false)
	if g.Enabled() {
		t.Error("Enabled() = true for disabled generator")
	}
	if _, err := g.Thumbnail(context.Background(), "/any.mp4", 1, 320); err == nil {
		t.Error("Thumbnail() succeeded on disabled generator")
	}
}

func TestThumbnailImageSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "poster.png")
	if err := os.WriteFile(src, pngBytes(t, 640, 480), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	g := NewGenerator(filepath.Join(dir, "thumbs"), "", true)
	data, err := g.Thumbnail(context.Background(), src, 0, 320)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if got := img.Bounds().Dx(); got != 320 {
		t.Errorf("thumbnail width = %d, want 320", got)
	}
}

func TestThumbnailVideoSourceUsesExtractor(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(src, []byte("not a real video"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	g := NewGenerator(filepath.Join(dir, "thumbs"), "", true)
	calls := 0
	g.extract = func(ctx context.Context, path string, position float64) ([]byte, error) {
		calls++
		return pngBytes(t, 400, 300), nil
	}

	data, err := g.Thumbnail(context.Background(), src, 1, 200)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("extractor called %d times, want 1", calls)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if got := img.Bounds().Dx(); got != 200 {
		t.Errorf("thumbnail width = %d, want 200", got)
	}

	// Second request hits the disk cache; the extractor stays cold.
	again, err := g.Thumbnail(context.Background(), src, 1, 200)
	if err != nil {
		t.Fatalf("Thumbnail() cached error: %v", err)
	}
	if calls != 1 {
		t.Errorf("extractor called %d times after cache hit, want 1", calls)
	}
	if !bytes.Equal(data, again) {
		t.Error("cached thumbnail differs from generated one")
	}
}

func TestThumbnailWidthClamping(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "big.png")
	if err := os.WriteFile(src, pngBytes(t, 2000, 1000), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	g := NewGenerator(filepath.Join(dir, "thumbs"), "", true)

	data, err := g.Thumbnail(context.Background(), src, 0, 99999)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if got := img.Bounds().Dx(); got != MaxWidth {
		t.Errorf("thumbnail width = %d, want clamped to %d", got, MaxWidth)
	}

	data, err = g.Thumbnail(context.Background(), src, 0, 0)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	img, err = jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if got := img.Bounds().Dx(); got != DefaultWidth {
		t.Errorf("thumbnail width = %d, want default %d", got, DefaultWidth)
	}
}

func TestThumbnailMissingSource(t *testing.T) {
	g := NewGenerator(t.TempDir(), "", true)
	if _, err := g.Thumbnail(context.Background(), "/no/such/file.mp4", 1, 320); err == nil {
		t.Error("Thumbnail() succeeded for missing source")
	}
}
