package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridpilot/gridpilot/internal/config"
	"github.com/gridpilot/gridpilot/internal/shared/logging"
	"github.com/gridpilot/gridpilot/internal/sim"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logging.New("gridpilot-sim")

	cfg, err := config.SimFromEnv()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	var opts []sim.Option
	if cfg.APIKey != "" {
		opts = append(opts, sim.WithAPIKey(cfg.APIKey))
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: sim.New(logger, opts...),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("scripted planner listening", "addr", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}
