// cmd/prediction-api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"insurance-predictor/internal/common/config"
	apperrors "insurance-predictor/internal/common/errors"
	"insurance-predictor/internal/common/logger"
	"insurance-predictor/internal/common/metrics"
	"insurance-predictor/internal/common/observability"
	"insurance-predictor/internal/pipeline"
	"insurance-predictor/internal/prediction"
	"insurance-predictor/internal/server"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewFromConfig(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting prediction API...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("frontendURL", cfg.CORS.FrontendURL),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	tracing, err := observability.InitTracing(observability.TracingOptions{
		Enabled:        cfg.Tracing.Enabled,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load model. A failed load keeps the service up without a model. ---
	var model prediction.Model
	p, err := pipeline.LoadWithRetry(ctx, cfg.Model.Path, cfg.Model.LoadAttempts, config.GetDuration(cfg.Model.LoadRetryDelay))
	if err != nil {
		apperrors.NewErrorHandler(log).Handle("model load", err, map[string]interface{}{
			"servingWithoutModel": true,
		})
		metrics.ModelLoaded.Set(0)
	} else {
		model = p
		metrics.ModelLoaded.Set(1)
		zapLog.Info("Model loaded successfully",
			zap.String("path", cfg.Model.Path),
			zap.String("name", p.Name()),
			zap.String("estimator", p.EstimatorKind()),
			zap.Int("trees", p.NumTrees()),
		)
	}

	svc, err := prediction.NewService(model, prediction.Config{CacheSize: cfg.Model.CacheSize}, obs, tracing.Tracer("prediction"), log)
	if err != nil {
		zapLog.Fatal("prediction service init failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.New(cfg, svc, log),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, draining requests...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("HTTP server stopped with error", zap.Error(err))
	}

	zapLog.Info("Prediction API stopped")
}
