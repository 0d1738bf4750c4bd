package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"vidpress/internal/jobs"
	"vidpress/internal/logging"
	"vidpress/internal/streaming"

	"github.com/gorilla/mux"
)

// batchSubmitRequest is the wire form of a batch submission.
type batchSubmitRequest struct {
	Requests []submitRequest `json:"requests"`
}

// SubmitBatch accepts a set of transcode requests coordinated as one batch.
// An empty set is valid and completes immediately.
func (h *Handlers) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	if !h.config.TranscodingEnabled {
		writeJSONError(w, "transcoding is disabled", http.StatusServiceUnavailable)
		return
	}

	var req batchSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	reqs := make([]jobs.Request, 0, len(req.Requests))
	for _, s := range req.Requests {
		reqs = append(reqs, s.toRequest())
	}

	batch, err := h.manager.SubmitBatch(reqs)
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	logging.Debug("batch %s submitted with %d members", batch.ID, len(reqs))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/batches/"+batch.ID)
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, batch.Snapshot())
}

// GetBatch returns the current snapshot of one batch.
func (h *Handlers) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.manager.GetBatch(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "batch not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, batch.Snapshot())
}

// CancelBatch cancels every member of a batch that is still in flight.
func (h *Handlers) CancelBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.manager.GetBatch(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "batch not found", http.StatusNotFound)
		return
	}

	batch.Cancel()
	writeJSONStatus(w, "canceling")
}

// BatchEvents streams aggregate batch progress as server-sent events.
func (h *Handlers) BatchEvents(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.manager.GetBatch(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "batch not found", http.StatusNotFound)
		return
	}

	stream, err := streaming.NewEventStream(w)
	if err != nil {
		writeJSONError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	if err := stream.Send("progress", batch.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-batch.Done():
			_ = stream.Send("done", batch.Snapshot())
			return
		case <-ticker.C:
			if err := stream.Send("progress", batch.Snapshot()); err != nil {
				return
			}
		}
	}
}
