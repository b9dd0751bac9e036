package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/insightforge/insight-engine/pkg/apperrors"
	"github.com/insightforge/insight-engine/pkg/config"
	"github.com/insightforge/insight-engine/pkg/ingest"
	"github.com/insightforge/insight-engine/pkg/models"
	"github.com/insightforge/insight-engine/pkg/services"
	"github.com/insightforge/insight-engine/pkg/services/workqueue"
)

// AnalysisHandler exposes the analysis engine over HTTP: a synchronous
// analyze endpoint and an asynchronous job surface backed by the work queue.
type AnalysisHandler struct {
	cfg          *config.Config
	parser       *ingest.Parser
	orchestrator services.AnalysisOrchestrator
	cache        *services.ResultCache
	queue        *workqueue.Queue
	logger       *zap.Logger
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(
	cfg *config.Config,
	parser *ingest.Parser,
	orchestrator services.AnalysisOrchestrator,
	cache *services.ResultCache,
	queue *workqueue.Queue,
	logger *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		cfg:          cfg,
		parser:       parser,
		orchestrator: orchestrator,
		cache:        cache,
		queue:        queue,
		logger:       logger.Named("analysis-handler"),
	}
}

// RegisterRoutes registers the analysis routes on the given mux.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/analyze", h.Analyze)
	mux.HandleFunc("POST /api/jobs", h.SubmitJob)
	mux.HandleFunc("GET /api/jobs/{id}", h.JobStatus)
	mux.HandleFunc("DELETE /api/jobs/{id}", h.CancelJob)
}

// AnalyzeResponse is the payload for a finished analysis.
type AnalyzeResponse struct {
	Results []models.AnalysisResult `json:"results"`
	Summary models.AnalysisSummary  `json:"summary"`
}

// Analyze handles POST /api/analyze: parse the uploaded dataset, run the
// complete analysis, and return the findings.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	table, ok := h.parseUpload(w, r)
	if !ok {
		return
	}

	if cached, hit := h.cache.Get(table.Fingerprint()); hit {
		h.logger.Debug("Result cache hit", zap.String("fingerprint", table.Fingerprint()))
		h.respond(w, cached)
		return
	}

	results := h.orchestrator.RunCompleteAnalysis(table)
	h.cache.Put(table.Fingerprint(), results)
	h.respond(w, results)
}

// SubmitJob handles POST /api/jobs: parse the dataset and enqueue an
// asynchronous analysis. Responds 202 with the job ID.
func (h *AnalysisHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	table, ok := h.parseUpload(w, r)
	if !ok {
		return
	}

	task := services.NewAnalysisTask(table, h.orchestrator)
	if err := h.queue.Enqueue(task); err != nil {
		h.logger.Error("Failed to enqueue analysis job", zap.Error(err))
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "queue_closed", "analysis queue is shutting down")
		return
	}

	_ = WriteJSON(w, http.StatusAccepted, map[string]string{"job_id": task.ID()})
}

// JobStatusResponse reports a job's lifecycle state plus its findings once
// completed.
type JobStatusResponse struct {
	Job     workqueue.Snapshot      `json:"job"`
	Results []models.AnalysisResult `json:"results,omitempty"`
	Summary *models.AnalysisSummary `json:"summary,omitempty"`
}

// JobStatus handles GET /api/jobs/{id}.
func (h *AnalysisHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	state, ok := h.queue.Get(r.PathValue("id"))
	if !ok {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "unknown job id")
		return
	}

	response := JobStatusResponse{Job: state.Snapshot()}
	if state.Status() == workqueue.TaskStatusCompleted {
		if task, isAnalysis := state.Task().(*services.AnalysisTask); isAnalysis {
			results, summary := task.Results()
			response.Results = results
			response.Summary = &summary
		}
	}
	_ = WriteJSON(w, http.StatusOK, response)
}

// CancelJob handles DELETE /api/jobs/{id}.
func (h *AnalysisHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.queue.Cancel(id) {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "unknown job id")
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"job_id": id, "status": "cancelling"})
}

func (h *AnalysisHandler) respond(w http.ResponseWriter, results []models.AnalysisResult) {
	response := AnalyzeResponse{
		Results: results,
		Summary: h.orchestrator.Summarize(results),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode analysis response", zap.Error(err))
	}
}

// parseUpload reads the request body (multipart file field "file", raw JSON,
// or raw CSV) into a table. On failure it writes the error response and
// returns ok=false.
func (h *AnalysisHandler) parseUpload(w http.ResponseWriter, r *http.Request) (*models.Table, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Analysis.MaxUploadBytes)

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		data   []byte
		asJSON bool
		err    error
	)
	switch {
	case contentType == "multipart/form-data":
		data, asJSON, err = readMultipartFile(r)
	case contentType == "application/json":
		data, err = io.ReadAll(r.Body)
		asJSON = true
	default:
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			_ = ErrorResponse(w, http.StatusRequestEntityTooLarge, "too_large", apperrors.ErrTableTooLarge.Error())
			return nil, false
		}
		_ = ErrorResponse(w, http.StatusBadRequest, "bad_upload", err.Error())
		return nil, false
	}

	var table *models.Table
	if asJSON {
		table, err = h.parser.FromJSON(bytes.NewReader(data))
	} else {
		table, err = h.parser.FromCSV(bytes.NewReader(data))
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNoUsableData) {
			_ = ErrorResponse(w, http.StatusBadRequest, "no_usable_data", apperrors.ErrNoUsableData.Error())
			return nil, false
		}
		h.logger.Warn("Failed to parse upload", zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadRequest, "parse_failed", err.Error())
		return nil, false
	}

	table.SizeBytes = int64(len(data))
	return table, true
}

// readMultipartFile extracts the "file" part. The filename extension decides
// the format; anything that is not .json is treated as CSV.
func readMultipartFile(r *http.Request) ([]byte, bool, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, false, err
	}
	asJSON := strings.HasSuffix(strings.ToLower(header.Filename), ".json")
	return data, asJSON, nil
}
