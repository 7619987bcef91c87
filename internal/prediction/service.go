// internal/prediction/service.go
package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "insurance-predictor/internal/common/errors"
	"insurance-predictor/internal/common/logger"
	"insurance-predictor/internal/common/metrics"
	"insurance-predictor/internal/common/observability"
	"insurance-predictor/internal/models"
	"insurance-predictor/internal/pipeline"
)

const tracerName = "insurance-predictor/prediction"

// Model is the fitted regression pipeline. *pipeline.Pipeline satisfies it.
type Model interface {
	Predict(ctx context.Context, row *pipeline.Row) (float64, error)
}

type namedModel interface {
	Name() string
}

// Result is one successful prediction.
type Result struct {
	PredictionID string
	Charges      float64
	Cached       bool
	Duration     time.Duration
}

type Service struct {
	model      Model
	cache      *lru.Cache[models.ApplicantRecord, float64]
	obs        *observability.Observability
	tracer     trace.Tracer
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewService wires a prediction service around model. model may be nil, in
// which case every call fails with MODEL_NOT_LOADED. obs and tracer are
// optional.
func NewService(model Model, cfg Config, obs *observability.Observability, tracer trace.Tracer, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	s := &Service{
		model:      model,
		obs:        obs,
		tracer:     tracer,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log.With(map[string]interface{}{"component": "prediction"}),
	}

	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("cache size must be >= 0, got %d", cfg.CacheSize)
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[models.ApplicantRecord, float64](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

func (s *Service) ModelLoaded() bool {
	return s.model != nil
}

// ModelName returns the artifact name, or "" when no model is loaded.
func (s *Service) ModelName() string {
	if named, ok := s.model.(namedModel); ok {
		return named.Name()
	}
	return ""
}

// Predict estimates annual charges for one applicant, rounded to cents.
func (s *Service) Predict(ctx context.Context, applicant models.ApplicantRecord) (*Result, error) {
	id := uuid.NewString()
	start := time.Now()

	if s.model == nil {
		return nil, s.fail(ctx, id, start, apperrors.NewModelNotLoadedError())
	}

	if s.cache != nil {
		if charges, ok := s.cache.Get(applicant); ok {
			metrics.PredictionCacheHits.Inc()
			return s.succeed(ctx, id, start, charges, true), nil
		}
	}

	ctx, span := s.tracer.Start(ctx, "pipeline.predict", trace.WithAttributes(
		attribute.String("prediction.id", id),
		attribute.String("applicant.region", applicant.Region),
	))
	defer span.End()

	raw, err := s.model.Predict(ctx, ApplicantRow(applicant))
	if err != nil {
		stdErr := classify(err)
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))
		return nil, s.fail(ctx, id, start, stdErr)
	}

	charges := RoundCharges(raw)
	span.SetAttributes(attribute.Float64("prediction.charges", charges))

	if s.cache != nil {
		s.cache.Add(applicant, charges)
	}
	return s.succeed(ctx, id, start, charges, false), nil
}

func (s *Service) succeed(ctx context.Context, id string, start time.Time, charges float64, cached bool) *Result {
	elapsed := time.Since(start)

	metrics.PredictionsTotal.WithLabelValues(models.StatusSuccess, "").Inc()
	metrics.PredictionDuration.WithLabelValues(models.StatusSuccess).Observe(elapsed.Seconds())
	s.obs.RecordPrediction(ctx, models.StatusSuccess, cached)
	s.obs.RecordPredictionDuration(ctx, elapsed, models.StatusSuccess)

	s.logger.Info("prediction completed", map[string]interface{}{
		"predictionId": id,
		"charges":      charges,
		"cached":       cached,
		"durationMs":   elapsed.Milliseconds(),
	})

	return &Result{PredictionID: id, Charges: charges, Cached: cached, Duration: elapsed}
}

func (s *Service) fail(ctx context.Context, id string, start time.Time, err error) *apperrors.StandardError {
	elapsed := time.Since(start)
	stdErr := s.errHandler.Handle("predict", err, map[string]interface{}{
		"predictionId": id,
		"durationMs":   elapsed.Milliseconds(),
	})

	metrics.PredictionsTotal.WithLabelValues(models.StatusFailed, string(stdErr.Code)).Inc()
	metrics.PredictionDuration.WithLabelValues(models.StatusFailed).Observe(elapsed.Seconds())
	s.obs.RecordPrediction(ctx, models.StatusFailed, false)
	s.obs.RecordPredictionDuration(ctx, elapsed, models.StatusFailed)

	return stdErr
}

// ApplicantRow lays an applicant out in the column order the model was
// fitted on.
func ApplicantRow(a models.ApplicantRecord) *pipeline.Row {
	return pipeline.NewRow().
		Set("age", pipeline.Num(float64(a.Age))).
		Set("sex", pipeline.Cat(a.Sex)).
		Set("bmi", pipeline.Num(a.BMI)).
		Set("children", pipeline.Num(float64(a.Children))).
		Set("smoker", pipeline.Cat(a.Smoker)).
		Set("region", pipeline.Cat(a.Region))
}

// RoundCharges rounds half away from zero to two decimal places.
func RoundCharges(v float64) float64 {
	return math.Round(v*100) / 100
}

func classify(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, pipeline.ErrUnknownCategory):
		return apperrors.NewUnknownCategoryError(err)
	case errors.Is(err, pipeline.ErrMissingValue):
		return apperrors.NewMissingValueError(err)
	case errors.Is(err, pipeline.ErrFeatureMismatch), errors.Is(err, pipeline.ErrMissingColumn):
		return apperrors.NewFeatureMismatchError(err)
	default:
		return apperrors.NewPredictionFailedError(err)
	}
}
