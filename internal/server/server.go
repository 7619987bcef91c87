// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insurance-predictor/internal/common/config"
	"insurance-predictor/internal/common/logger"
	"insurance-predictor/internal/common/validation"
	"insurance-predictor/internal/models"
	"insurance-predictor/internal/prediction"
)

// Predictor is the inference side of the service. *prediction.Service
// satisfies it.
type Predictor interface {
	Predict(ctx context.Context, applicant models.ApplicantRecord) (*prediction.Result, error)
	ModelLoaded() bool
	ModelName() string
}

type Server struct {
	cfg       *config.Config
	predictor Predictor
	validator *validation.Validator
	logger    logger.Logger
	router    *chi.Mux
	now       func() time.Time
}

func New(cfg *config.Config, predictor Predictor, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	s := &Server{
		cfg:       cfg,
		predictor: predictor,
		validator: validation.MustNewValidator(models.ApplicantSchema),
		logger:    log.With(map[string]interface{}{"component": "http"}),
		now:       time.Now,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   s.cfg.CORS.AllowedMethods,
		AllowedHeaders:   s.cfg.CORS.AllowedHeaders,
		AllowCredentials: s.cfg.CORS.AllowCredentials,
		MaxAge:           s.cfg.CORS.MaxAge,
	}))

	// Probes
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Inference
	r.Post("/predict", s.handlePredict)
	r.Post("/risk-profile", s.handleRiskProfile)

	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger logs one line per request once the handler returns.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.Info("request completed", map[string]interface{}{
					"requestId":  middleware.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"durationMs": time.Since(start).Milliseconds(),
				})
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
