package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/gradeview/internal/api"
	"github.com/dgallion1/gradeview/internal/backend"
	"github.com/dgallion1/gradeview/internal/config"
	"github.com/dgallion1/gradeview/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The grading service is optional. Without it the server still builds
	// views from posted text and scores.
	var client *backend.Client
	var sub pipeline.Submitter
	if cfg.BackendEnabled() {
		client = backend.NewClient(cfg.BackendURL, cfg.BackendAPIKey)
		sub = client
	} else {
		log.Warn("GRADING_BACKEND_URL not set, answer fetch and submit disabled")
	}

	orch := pipeline.NewOrchestrator(cfg, sub, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, client, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if client != nil {
			client.Close()
		}
	}()

	log.Info("starting gradeview", "port", cfg.Port, "workers", cfg.WorkerCount, "backend", cfg.BackendEnabled())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
