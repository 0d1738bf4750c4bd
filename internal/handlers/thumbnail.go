package handlers

import (
	"net/http"
	"strconv"

	"vidpress/internal/logging"
)

// GetThumbnail returns a JPEG frame from a source file. Optional query
// parameters: position (seconds into the file) and width (pixels).
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	if !h.config.ThumbnailsEnabled {
		writeJSONError(w, "thumbnails are disabled", http.StatusServiceUnavailable)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path parameter is required", http.StatusBadRequest)
		return
	}

	position := 0.0
	if raw := r.URL.Query().Get("position"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSONError(w, "invalid position parameter", http.StatusBadRequest)
			return
		}
		position = parsed
	}

	width := 0
	if raw := r.URL.Query().Get("width"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, "invalid width parameter", http.StatusBadRequest)
			return
		}
		width = parsed
	}

	data, err := h.thumbnails.Thumbnail(r.Context(), path, position, width)
	if err != nil {
		logging.Debug("thumbnail for %s failed: %v", path, err)
		writeJSONError(w, "thumbnail generation failed", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		logging.Debug("failed to write thumbnail response: %v", err)
	}
}
