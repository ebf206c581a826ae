package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eacdc/VoiceNoteTool/internal/config"
)

// OpsServer exposes /healthz and /metrics on a local address
type OpsServer struct {
	server    *http.Server
	logger    *slog.Logger
	startTime time.Time
}

// NewOpsServer creates the operational HTTP listener.
func NewOpsServer(cfg config.OpsConfig, logger *slog.Logger) *OpsServer {
	o := &OpsServer{
		logger:    logger,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", o.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	o.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return o
}

// Start begins serving in the background.
func (o *OpsServer) Start() error {
	o.logger.Info("starting ops listener", slog.String("address", o.server.Addr))

	go func() {
		if err := o.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			o.logger.Error("ops listener error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully shuts the listener down.
func (o *OpsServer) Stop(ctx context.Context) error {
	o.logger.Info("stopping ops listener")
	return o.server.Shutdown(ctx)
}

func (o *OpsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(o.startTime).Seconds()),
	})
}
