package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/cognicore/sanskrit/internal/logger"
	"github.com/cognicore/sanskrit/internal/transport/httpapi"
	"github.com/cognicore/sanskrit/pkg/sanskrit"
	"github.com/cognicore/sanskrit/pkg/sanskrit/config"
)

func main() {
	configPath := flag.String("config", os.Getenv("SANSKRIT_CONFIG"), "Config file (defaults to $SANSKRIT_CONFIG)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			panic("failed to load config: " + err.Error())
		}
	}

	logger, err := logpkg.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sanskrit API server",
		zap.String("env", cfg.Logging.Env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("oracle", cfg.Oracle.Kind),
	)

	ctx := context.Background()
	analyzer, err := sanskrit.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build analyzer", zap.Error(err))
	}
	defer analyzer.Close()
	logger.Info("Analyzer ready", zap.Bool("tagger_ready", analyzer.TaggerReady()))

	server := httpapi.NewServer(analyzer, logger)
	handler := server.Router(httpapi.Options{AllowedOrigins: cfg.HTTP.AllowedOrigins})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
