package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches all API and probe routes to the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/jobs", h.SubmitJob).Methods(http.MethodPost)
	api.HandleFunc("/jobs", h.ListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", h.GetJob).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", h.CancelJob).Methods(http.MethodDelete)
	api.HandleFunc("/jobs/{id}/events", h.JobEvents).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}/download", h.DownloadJob).Methods(http.MethodGet)

	api.HandleFunc("/batches", h.SubmitBatch).Methods(http.MethodPost)
	api.HandleFunc("/batches/{id}", h.GetBatch).Methods(http.MethodGet)
	api.HandleFunc("/batches/{id}", h.CancelBatch).Methods(http.MethodDelete)
	api.HandleFunc("/batches/{id}/events", h.BatchEvents).Methods(http.MethodGet)

	api.HandleFunc("/cache", h.ListCache).Methods(http.MethodGet)
	api.HandleFunc("/cache", h.ClearCache).Methods(http.MethodDelete)
	api.HandleFunc("/cache/entry", h.RemoveCacheEntry).Methods(http.MethodDelete)

	api.HandleFunc("/probe", h.ProbeSource).Methods(http.MethodGet)
	api.HandleFunc("/thumbnail", h.GetThumbnail).Methods(http.MethodGet)
	api.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	router.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
}
