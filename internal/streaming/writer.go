package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"vidpress/internal/logging"
)

var (
	// ErrWriteTimeout indicates a single write exceeded the configured
	// timeout, usually a client draining too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates the client disconnected mid-stream.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates the stream was closed programmatically.
	ErrStreamCanceled = errors.New("stream canceled")
)

// Config bounds a streaming response.
type Config struct {
	// WriteTimeout caps one write operation.
	WriteTimeout time.Duration
	// IdleTimeout caps the gap between successful writes.
	IdleTimeout time.Duration
	// MaxDuration caps the whole stream; 0 means unlimited.
	MaxDuration time.Duration
	// ChunkSize splits large writes so cancellation is noticed promptly;
	// 0 writes as received.
	ChunkSize int
}

// DefaultConfig returns streaming defaults suited to serving transcoded
// outputs over uneven links.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// TimeoutWriter wraps an http.ResponseWriter so a stalled client cannot
// pin a handler goroutine forever.
type TimeoutWriter struct {
	w       http.ResponseWriter
	ctx     context.Context
	cancel  context.CancelFunc
	config  Config
	flusher http.Flusher

	mu           sync.Mutex
	started      time.Time
	lastWrite    time.Time
	bytesWritten int64
	closed       bool
}

// NewTimeoutWriter wraps w. The returned writer owns a watchdog goroutine;
// call Close when done.
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config Config) *TimeoutWriter {
	wctx, cancel := context.WithCancel(ctx)
	tw := &TimeoutWriter{
		w:         w,
		ctx:       wctx,
		cancel:    cancel,
		config:    config,
		started:   time.Now(),
		lastWrite: time.Now(),
	}
	if flusher, ok := w.(http.Flusher); ok {
		tw.flusher = flusher
	}
	go tw.watchIdle()
	return tw
}

// Write implements io.Writer.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}

	select {
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	default:
	}

	if tw.config.MaxDuration > 0 && time.Since(tw.started) > tw.config.MaxDuration {
		return 0, ErrWriteTimeout
	}

	if tw.config.ChunkSize > 0 && len(p) > tw.config.ChunkSize {
		return tw.writeChunked(p)
	}
	return tw.writeOne(p)
}

func (tw *TimeoutWriter) writeChunked(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		select {
		case <-tw.ctx.Done():
			return total, tw.contextError()
		default:
		}

		n := tw.config.ChunkSize
		if len(p) < n {
			n = len(p)
		}

		written, err := tw.writeOne(p[:n])
		total += written
		if err != nil {
			return total, err
		}
		p = p[n:]

		if tw.flusher != nil {
			tw.flusher.Flush()
		}
	}
	return total, nil
}

func (tw *TimeoutWriter) writeOne(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)

	go func() {
		n, err := tw.w.Write(p)
		ch <- result{n, err}
	}()

	select {
	case res := <-ch:
		if res.err == nil {
			tw.mu.Lock()
			tw.lastWrite = time.Now()
			tw.bytesWritten += int64(res.n)
			tw.mu.Unlock()
		}
		return res.n, res.err
	case <-time.After(tw.config.WriteTimeout):
		tw.cancel()
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	}
}

func (tw *TimeoutWriter) watchIdle() {
	if tw.config.IdleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(tw.config.IdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastWrite)
			closed := tw.closed
			tw.mu.Unlock()

			if closed {
				return
			}
			if idle > tw.config.IdleTimeout {
				logging.Warn("Stream idle timeout exceeded: %v", idle)
				tw.cancel()
				return
			}
		case <-tw.ctx.Done():
			return
		}
	}
}

func (tw *TimeoutWriter) contextError() error {
	if errors.Is(tw.ctx.Err(), context.Canceled) {
		return ErrClientGone
	}
	return ErrStreamCanceled
}

// Close stops the watchdog and marks the writer unusable.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return nil
	}
	tw.closed = true
	tw.cancel()
	return nil
}

// Stats returns bytes written and elapsed time.
func (tw *TimeoutWriter) Stats() (int64, time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.bytesWritten, time.Since(tw.started)
}

// StreamFile copies r to the response with timeout protection. Used by the
// download endpoint to serve transcoded outputs.
func StreamFile(ctx context.Context, w http.ResponseWriter, r io.Reader, config Config) error {
	tw := NewTimeoutWriter(ctx, w, config)
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Warn("failed to close timeout writer: %v", err)
		}
	}()

	w.Header().Set("X-Content-Type-Options", "nosniff")

	_, err := io.Copy(tw, r)

	bytesWritten, duration := tw.Stats()
	logging.Debug("Stream completed: %d bytes in %v", bytesWritten, duration)
	return err
}
