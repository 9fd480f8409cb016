package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/piratarr/piratarr/internal/jobs"
	"github.com/piratarr/piratarr/internal/library"
	"github.com/piratarr/piratarr/internal/provider"
)

type statusResponse struct {
	Scan      library.ScanState    `json:"scan"`
	JobCounts map[jobs.Status]int  `json:"job_counts"`
	Media     *mediaCountsResponse `json:"media,omitempty"`
}

type mediaCountsResponse struct {
	Movies   int `json:"movies"`
	Episodes int `json:"episodes"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := statusResponse{
		Scan:      s.scanner.State(),
		JobCounts: s.queue.Counts(),
	}
	if s.store != nil {
		items, err := s.store.ListMediaItems(r.Context(), "")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		counts := &mediaCountsResponse{}
		for _, item := range items {
			switch item.Type {
			case provider.MediaTypeMovie:
				counts.Movies++
			case provider.MediaTypeEpisode:
				counts.Episodes++
			}
		}
		resp.Media = counts
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.scanner.TriggerScan(); err != nil {
		if errors.Is(err, library.ErrScanBusy) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": err.Error(),
				"scan":  s.scanner.State(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"started": true,
		"scan":    s.scanner.State(),
	})
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "media store is not configured")
		return
	}

	mediaType := provider.MediaType(r.URL.Query().Get("type"))
	switch mediaType {
	case "", provider.MediaTypeMovie, provider.MediaTypeEpisode:
	default:
		writeError(w, http.StatusBadRequest, "unknown media type")
		return
	}

	items, err := s.store.ListMediaItems(r.Context(), mediaType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleTranslateMedia serves POST /api/media/{id}/translate.
func (s *Server) handleTranslateMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "media store is not configured")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/media/")
	if !strings.HasSuffix(path, "/translate") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	itemID := strings.TrimSuffix(strings.TrimSuffix(path, "/translate"), "/")
	if decoded, err := url.PathUnescape(itemID); err == nil {
		itemID = decoded
	}
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "missing media id")
		return
	}

	item, err := s.store.GetMediaItem(r.Context(), itemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "media item not found")
		return
	}
	if !item.Mapped {
		writeError(w, http.StatusConflict, "media item has no local path mapping")
		return
	}
	if len(item.SubtitlePaths) == 0 {
		writeError(w, http.StatusConflict, "media item has no subtitle files")
		return
	}

	title := item.Title
	if item.SeriesTitle != "" {
		title = item.SeriesTitle + " - " + item.Title
	}

	queued := make([]*jobs.TranslationJob, 0, len(item.SubtitlePaths))
	created := 0
	for _, sub := range item.SubtitlePaths {
		job, isNew := s.queue.Enqueue(jobs.EnqueueRequest{
			MediaTitle: title,
			MediaType:  string(item.Type),
			SourcePath: sub,
		})
		if isNew {
			created++
		}
		queued = append(queued, job)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"created": created,
		"jobs":    queued,
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := jobs.Status(r.URL.Query().Get("status"))
	switch status {
	case "", jobs.StatusPending, jobs.StatusProcessing, jobs.StatusCompleted, jobs.StatusFailed:
	default:
		writeError(w, http.StatusBadRequest, "unknown job status")
		return
	}
	writeJSON(w, http.StatusOK, s.queue.List(status))
}

// handleRetryJob serves POST /api/jobs/{id}/retry.
func (s *Server) handleRetryJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if !strings.HasSuffix(path, "/retry") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	jobID := strings.TrimSuffix(strings.TrimSuffix(path, "/retry"), "/")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "missing job id")
		return
	}

	job, err := s.queue.Retry(jobID)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, jobs.ErrInvalidState):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

type translatePathRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleTranslatePath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req translatePathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	job, created := s.queue.Enqueue(jobs.EnqueueRequest{
		MediaTitle: req.Path,
		MediaType:  string(provider.MediaTypeManual),
		SourcePath: req.Path,
	})
	code := http.StatusCreated
	if !created {
		code = http.StatusOK
	}
	writeJSON(w, code, map[string]any{
		"created": created,
		"job":     job,
	})
}

type translateBatchRequest struct {
	MediaIDs []string `json:"media_ids"`
}

type translateBatchResult struct {
	MediaID string                 `json:"media_id"`
	Created int                    `json:"created"`
	Jobs    []*jobs.TranslationJob `json:"jobs,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// handleTranslateBatch enqueues each listed media item independently; one
// failing item never aborts the others.
func (s *Server) handleTranslateBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "media store is not configured")
		return
	}

	var req translateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(req.MediaIDs) == 0 {
		writeError(w, http.StatusBadRequest, "media_ids is required")
		return
	}

	results := make([]translateBatchResult, 0, len(req.MediaIDs))
	for _, id := range req.MediaIDs {
		result := translateBatchResult{MediaID: id}
		item, err := s.store.GetMediaItem(r.Context(), id)
		switch {
		case err != nil:
			result.Error = err.Error()
		case item == nil:
			result.Error = "media item not found"
		case !item.Mapped:
			result.Error = "media item has no local path mapping"
		case len(item.SubtitlePaths) == 0:
			result.Error = "media item has no subtitle files"
		default:
			for _, sub := range item.SubtitlePaths {
				job, isNew := s.queue.Enqueue(jobs.EnqueueRequest{
					MediaTitle: item.Title,
					MediaType:  string(item.Type),
					SourcePath: sub,
				})
				if isNew {
					result.Created++
				}
				result.Jobs = append(result.Jobs, job)
			}
		}
		results = append(results, result)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"results": results})
}

type previewRequest struct {
	Text string `json:"text"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.translator == nil {
		writeError(w, http.StatusNotImplemented, "translator is not configured")
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"original":   req.Text,
		"translated": s.translator.Preview(req.Text),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
