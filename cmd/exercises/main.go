package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	fileadapter "github.com/couchcryptid/stencil-lab/internal/adapter/file"
	httpadapter "github.com/couchcryptid/stencil-lab/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/stencil-lab/internal/adapter/kafka"
	"github.com/couchcryptid/stencil-lab/internal/config"
	"github.com/couchcryptid/stencil-lab/internal/observability"
	"github.com/couchcryptid/stencil-lab/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var (
		images  pipeline.ImageSource
		wind    pipeline.WindSource
		loaders []pipeline.ReportLoader
	)
	if cfg.ImagePath != "" {
		images = fileadapter.ImageSource{Path: cfg.ImagePath}
	}
	if cfg.WindDataPath != "" {
		wind = fileadapter.WindSource{Path: cfg.WindDataPath}
	}

	var files *fileadapter.Writer
	if cfg.OutputDir != "" {
		files, err = fileadapter.NewWriter(cfg.OutputDir, cfg.ReportFormat, logger)
		if err != nil {
			logger.Error("failed to create output writer", "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, files)
	}

	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, kafkaWriter)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReportTopic)
	}

	cache := pipeline.NewRefilterCache(cfg.RefilterCacheSize, metrics)
	p := pipeline.New(images, wind, loaders, cache, cfg.SmoothPasses, logger, metrics)
	if files != nil {
		p.SetArtifactWriter(files)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := 0
	if cfg.Serve {
		serve(ctx, cfg, p, logger)
	} else if _, err := p.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		code = 1
	}

	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	stop()
	os.Exit(code)
}

// serve runs the exercises once, then keeps the HTTP endpoints up and
// re-runs on the configured schedule until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if _, err := p.Run(ctx); err != nil {
		logger.Error("initial run failed", "error", err)
	}

	var scheduler *cron.Cron
	if cfg.RunSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.RunSchedule, func() {
			if _, err := p.Run(ctx); err != nil {
				logger.Error("scheduled run failed", "error", err)
			}
		})
		if err != nil {
			logger.Error("invalid run schedule", "schedule", cfg.RunSchedule, "error", err)
		} else {
			scheduler.Start()
			logger.Info("scheduled runs enabled", "schedule", cfg.RunSchedule)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("scheduled run still in progress at shutdown")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
