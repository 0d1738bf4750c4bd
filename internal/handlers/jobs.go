package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vidpress/internal/jobs"
	"vidpress/internal/logging"
	"vidpress/internal/preset"
	"vidpress/internal/streaming"

	"github.com/gorilla/mux"
)

// progressPollInterval is how often event streams sample job progress.
const progressPollInterval = 200 * time.Millisecond

// submitRequest is the wire form of a job submission. Quality and format
// arrive as free-form strings and are normalized before use.
type submitRequest struct {
	SourcePath string `json:"sourcePath"`
	Quality    string `json:"quality"`
	Format     string `json:"format"`
	OutputPath string `json:"outputPath,omitempty"`
}

func (s submitRequest) toRequest() jobs.Request {
	return jobs.Request{
		SourcePath: s.SourcePath,
		Quality:    preset.ParseQuality(s.Quality),
		Format:     preset.ParseFormat(s.Format),
		OutputPath: s.OutputPath,
	}
}

// SubmitJob accepts a transcode request and returns 202 with the job snapshot.
func (h *Handlers) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if !h.config.TranscodingEnabled {
		writeJSONError(w, "transcoding is disabled", http.StatusServiceUnavailable)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	job, err := h.manager.Submit(req.toRequest())
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	logging.Debug("job %s submitted for %s", job.ID, job.Request.SourcePath)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/jobs/"+job.ID)
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, job.Snapshot())
}

func writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobs.ErrInvalidArguments):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, jobs.ErrShuttingDown):
		writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		writeJSONError(w, "job submission failed", http.StatusInternalServerError)
	}
}

// ListJobs returns recent job history, newest first.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	records, err := h.manager.History(r.Context())
	if err != nil {
		logging.Error("failed to load job history: %v", err)
		writeJSONError(w, "failed to load job history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"jobs":  records,
		"count": len(records),
	})
}

// GetJob returns the current snapshot of one job.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.manager.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, job.Snapshot())
}

// CancelJob requests cancellation of a running or pending job.
func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.manager.Cancel(id) {
		writeJSONError(w, "job not found", http.StatusNotFound)
		return
	}

	logging.Debug("cancellation requested for job %s", id)
	writeJSONStatus(w, "canceling")
}

// JobEvents streams job progress as server-sent events until the job
// reaches a terminal state or the client disconnects.
func (h *Handlers) JobEvents(w http.ResponseWriter, r *http.Request) {
	job, ok := h.manager.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "job not found", http.StatusNotFound)
		return
	}

	stream, err := streaming.NewEventStream(w)
	if err != nil {
		writeJSONError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	if err := stream.Send("progress", job.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-job.Done():
			_ = stream.Send("done", job.Snapshot())
			return
		case <-ticker.C:
			if err := stream.Send("progress", job.Snapshot()); err != nil {
				return
			}
		}
	}
}

// DownloadJob streams the output file of a completed job.
func (h *Handlers) DownloadJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.manager.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "job not found", http.StatusNotFound)
		return
	}

	if !job.State().Terminal() {
		writeJSONError(w, "job is still in progress", http.StatusConflict)
		return
	}

	outputPath, err := job.Result()
	if err != nil {
		writeJSONError(w, "job did not produce an output", http.StatusGone)
		return
	}

	f, err := os.Open(outputPath)
	if err != nil {
		logging.Error("failed to open job output %s: %v", outputPath, err)
		writeJSONError(w, "output file unavailable", http.StatusGone)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.Header().Set("Content-Type", contentTypeForOutput(outputPath))
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(outputPath)+"\"")

	if err := streaming.StreamFile(r.Context(), w, f, streaming.DefaultConfig()); err != nil {
		// Client disconnects are routine and not worth an error line.
		if !errors.Is(err, streaming.ErrClientGone) {
			logging.Warn("download of %s interrupted: %v", outputPath, err)
		}
	}
}

func contentTypeForOutput(path string) string {
	switch filepath.Ext(path) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
