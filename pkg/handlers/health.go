package handlers

import (
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/insightforge/insight-engine/pkg/config"
	"github.com/insightforge/insight-engine/pkg/services/workqueue"
)

// HealthResponse reports engine liveness plus analysis queue occupancy. The
// engine holds no external dependencies, so a reachable queue means healthy.
type HealthResponse struct {
	Status string          `json:"status"`
	Queue  workqueue.Stats `json:"queue"`
}

// PingResponse carries service and build information.
type PingResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	GoVersion   string `json:"go_version"`
	Environment string `json:"environment"`
}

// HealthHandler serves the liveness and service-info endpoints.
type HealthHandler struct {
	cfg    *config.Config
	queue  *workqueue.Queue
	logger *zap.Logger
}

// NewHealthHandler creates a health handler over the analysis queue.
func NewHealthHandler(cfg *config.Config, queue *workqueue.Queue, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, queue: queue, logger: logger}
}

// RegisterRoutes registers the health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status: "ok",
		Queue:  h.queue.Stats(),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	response := PingResponse{
		Status:      "ok",
		Service:     "insight-engine",
		Version:     h.cfg.Version,
		GoVersion:   runtime.Version(),
		Environment: h.cfg.Env,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
