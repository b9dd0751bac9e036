package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/insightforge/insight-engine/pkg/config"
	"github.com/insightforge/insight-engine/pkg/handlers"
	"github.com/insightforge/insight-engine/pkg/ingest"
	"github.com/insightforge/insight-engine/pkg/services"
	"github.com/insightforge/insight-engine/pkg/services/workqueue"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	inferencer := services.NewTypeInferenceService()
	parser := ingest.NewParser(inferencer, cfg.Analysis.InferenceSampleSize)
	validator := services.NewDataValidationService(cfg.Analysis.ValidationSampleRows, logger)
	orchestrator := services.NewAnalysisOrchestrator(validator, logger)
	cache := services.NewResultCache(cfg.Analysis.ResultCacheCapacity)

	queue := workqueue.New(logger)
	queue.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.Shutdown(ctx)
	}()

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, queue, logger).RegisterRoutes(mux)
	handlers.NewAnalysisHandler(cfg, parser, orchestrator, cache, queue, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting insight-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// buildLogger picks the zap profile from the environment name: development
// output locally, JSON production output everywhere else.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
