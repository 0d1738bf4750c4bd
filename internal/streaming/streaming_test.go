package streaming

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStreamFileCopiesEverything(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := bytes.Repeat([]byte("abcdefgh"), 32*1024) // forces chunking

	config := DefaultConfig()
	config.ChunkSize = 16 * 1024

	if err := StreamFile(context.Background(), rec, bytes.NewReader(payload), config); err != nil {
		t.Fatalf("StreamFile() error: %v", err)
	}
	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Errorf("body length = %d, want %d", rec.Body.Len(), len(payload))
	}
}

func TestTimeoutWriterClientGone(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tw := NewTimeoutWriter(ctx, rec, DefaultConfig())
	defer tw.Close()

	if _, err := tw.Write([]byte("data")); !errors.Is(err, ErrClientGone) {
		t.Errorf("Write() err = %v, want ErrClientGone", err)
	}
}

func TestTimeoutWriterClosedRejectsWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := NewTimeoutWriter(context.Background(), rec, DefaultConfig())

	if err := tw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := tw.Write([]byte("data")); !errors.Is(err, ErrStreamCanceled) {
		t.Errorf("Write() after Close err = %v, want ErrStreamCanceled", err)
	}
	// Idempotent close.
	if err := tw.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestTimeoutWriterMaxDuration(t *testing.T) {
	rec := httptest.NewRecorder()
	config := DefaultConfig()
	config.MaxDuration = time.Nanosecond

	tw := NewTimeoutWriter(context.Background(), rec, config)
	defer tw.Close()

	time.Sleep(time.Millisecond)
	if _, err := tw.Write([]byte("data")); !errors.Is(err, ErrWriteTimeout) {
		t.Errorf("Write() past MaxDuration err = %v, want ErrWriteTimeout", err)
	}
}

func TestTimeoutWriterStats(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := NewTimeoutWriter(context.Background(), rec, DefaultConfig())
	defer tw.Close()

	if _, err := tw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	bytesWritten, duration := tw.Stats()
	if bytesWritten != 5 {
		t.Errorf("Stats() bytes = %d, want 5", bytesWritten)
	}
	if duration <= 0 {
		t.Errorf("Stats() duration = %v, want > 0", duration)
	}
}

func TestEventStreamFormat(t *testing.T) {
	rec := httptest.NewRecorder()

	es, err := NewEventStream(rec)
	if err != nil {
		t.Fatalf("NewEventStream() error: %v", err)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}

	if err := es.Send("progress", map[string]float64{"fraction": 0.5}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: progress\n") {
		t.Errorf("body missing event line: %q", body)
	}
	if !strings.Contains(body, `data: {"fraction":0.5}`) {
		t.Errorf("body missing data line: %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Errorf("event not terminated by blank line: %q", body)
	}

	if err := es.Comment("keepalive"); err != nil {
		t.Fatalf("Comment() error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), ": keepalive\n") {
		t.Errorf("comment missing: %q", rec.Body.String())
	}
}

// plainWriter hides the recorder's Flush method.
type plainWriter struct {
	rec *httptest.ResponseRecorder
}

func (p plainWriter) Header() http.Header       { return p.rec.Header() }
func (p plainWriter) Write(b []byte) (int, error) { return p.rec.Write(b) }
func (p plainWriter) WriteHeader(code int)      { p.rec.WriteHeader(code) }

func TestEventStreamRequiresFlusher(t *testing.T) {
	if _, err := NewEventStream(plainWriter{httptest.NewRecorder()}); !errors.Is(err, ErrStreamingUnsupported) {
		t.Errorf("NewEventStream() err = %v, want ErrStreamingUnsupported", err)
	}
}
