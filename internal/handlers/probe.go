package handlers

import (
	"errors"
	"net/http"

	"vidpress/internal/engine"
	"vidpress/internal/logging"
)

// ProbeSource inspects a media file and returns its container, codecs,
// dimensions and duration.
func (h *Handlers) ProbeSource(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path parameter is required", http.StatusBadRequest)
		return
	}

	info, err := h.prober.Probe(r.Context(), path)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidSource) {
			writeJSONError(w, "source is not a readable media file", http.StatusUnprocessableEntity)
			return
		}
		logging.Error("probe of %s failed: %v", path, err)
		writeJSONError(w, "probe failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, info)
}
