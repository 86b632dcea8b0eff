package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/govtech-bb/formflow/internal/config"
	"github.com/govtech-bb/formflow/internal/transport"
	"github.com/govtech-bb/formflow/pkg/payment"
	"github.com/govtech-bb/formflow/pkg/schema"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	forms, err := schema.LoadDir(cfg.SchemaDir)
	if err != nil {
		logger.Error("loading form schemas failed",
			slog.String("dir", cfg.SchemaDir),
			slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("form schemas loaded", slog.Int("count", len(forms)))

	provider, err := payment.NewProvider(cfg.Payment, logger)
	if err != nil {
		logger.Error("payment provider setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("payment provider ready", slog.String("provider", provider.Name()))

	handler := transport.New(forms, provider, cfg.Payment, logger)
	srv := transport.NewServer(cfg.Addr, transport.NewRouter(handler))

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.Any("error", err))
	}
}
