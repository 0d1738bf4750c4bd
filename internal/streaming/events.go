package streaming

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrStreamingUnsupported indicates the response writer cannot flush,
// which server-sent events require.
var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// EventStream writes server-sent events. Progress endpoints use it to push
// cleaned job and batch fractions to clients without polling.
type EventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewEventStream prepares w for server-sent events and writes the SSE
// headers.
func NewEventStream(w http.ResponseWriter) (*EventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &EventStream{w: w, flusher: flusher}, nil
}

// Send writes one event with a JSON payload and flushes it.
func (s *EventStream) Send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment line, useful as a keep-alive.
func (s *EventStream) Comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
