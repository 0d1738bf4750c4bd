package handlers

import (
	"net/http"

	"vidpress/internal/startup"
)

// GetVersion returns version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, startup.GetBuildInfo())
}
