package handlers

import (
	"encoding/json"
	"net/http"

	"vidpress/internal/logging"
)

// ListCache returns the currently cached result files.
func (h *Handlers) ListCache(w http.ResponseWriter, _ *http.Request) {
	files := h.manager.ListCachedFiles()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// ClearCache removes every cached result and reports how many files
// were actually deleted.
func (h *Handlers) ClearCache(w http.ResponseWriter, _ *http.Request) {
	removed := h.manager.ClearCache()
	logging.Info("cache cleared: %d files removed", removed)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"status":  "cleared",
		"removed": removed,
	})
}

// RemoveCacheEntry evicts the cached result for one source/quality/format
// combination.
func (h *Handlers) RemoveCacheEntry(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SourcePath == "" {
		writeJSONError(w, "sourcePath is required", http.StatusBadRequest)
		return
	}

	if !h.manager.RemoveCachedFile(req.toRequest()) {
		writeJSONError(w, "cache entry not found", http.StatusNotFound)
		return
	}

	writeJSONStatus(w, "removed")
}
