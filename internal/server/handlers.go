// internal/server/handlers.go
package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "insurance-predictor/internal/common/errors"
	"insurance-predictor/internal/common/metrics"
	"insurance-predictor/internal/common/validation"
	"insurance-predictor/internal/models"
	"insurance-predictor/internal/risk"
)

const (
	codeBodyTooLarge    = "body_too_large"
	defaultMaxBodyBytes = 1 << 20
)

// Prediction handler. Inference failures are reported in the body with a
// 200 status; only malformed requests get a 4xx.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	applicant, ok := s.readApplicant(w, r)
	if !ok {
		return
	}

	result, err := s.predictor.Predict(r.Context(), applicant)
	if err != nil {
		respondJSON(w, http.StatusOK, models.FailureResponse{
			Error:  err.Error(),
			Status: models.StatusFailed,
		})
		return
	}

	respondJSON(w, http.StatusOK, models.PredictionResponse{
		ChargesPredites: result.Charges,
		Status:          models.StatusSuccess,
	})
}

func (s *Server) handleRiskProfile(w http.ResponseWriter, r *http.Request) {
	applicant, ok := s.readApplicant(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, risk.Profile(applicant))
}

// Health check handler. The process is alive even without a model.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.predictor.ModelLoaded() {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:      status,
		ModelLoaded: s.predictor.ModelLoaded(),
		Model:       s.predictor.ModelName(),
		Time:        s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.predictor.ModelLoaded() {
		respondJSON(w, http.StatusServiceUnavailable, models.FailureResponse{
			Error:  apperrors.NewModelNotLoadedError().Error(),
			Status: "not_ready",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// readApplicant validates and decodes the body. On failure it has already
// written a 422 response.
func (s *Server) readApplicant(w http.ResponseWriter, r *http.Request) (models.ApplicantRecord, bool) {
	limit := s.cfg.Server.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		verr := validation.ValidationError{Field: "body", Message: err.Error(), Code: validation.CodeInvalidJSON}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			verr.Message = "request body too large"
			verr.Code = codeBodyTooLarge
		}
		s.rejectRequest(w, r, &validation.ValidationResult{Errors: []validation.ValidationError{verr}})
		return models.ApplicantRecord{}, false
	}

	result, err := s.validator.ValidateBytes(body)
	if err != nil {
		s.rejectRequest(w, r, &validation.ValidationResult{Errors: []validation.ValidationError{{
			Field:   "body",
			Message: err.Error(),
			Code:    validation.CodeInvalidJSON,
		}}})
		return models.ApplicantRecord{}, false
	}
	if !result.Valid {
		s.rejectRequest(w, r, result)
		return models.ApplicantRecord{}, false
	}

	applicant, err := models.DecodeApplicant(body)
	if err != nil {
		verr := validation.ValidationError{Field: "body", Message: err.Error(), Code: validation.CodeInvalidType}
		var fieldErr *models.FieldError
		if errors.As(err, &fieldErr) {
			verr.Field = fieldErr.Field
			verr.Message = fieldErr.Err.Error()
		}
		s.rejectRequest(w, r, &validation.ValidationResult{Errors: []validation.ValidationError{verr}})
		return models.ApplicantRecord{}, false
	}

	return applicant, true
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request, result *validation.ValidationResult) {
	metrics.ValidationFailures.WithLabelValues(r.URL.Path).Inc()

	stdErr := apperrors.NewInvalidRequestError(result.Summary())
	s.logger.Warn("request rejected", map[string]interface{}{
		"requestId": middleware.GetReqID(r.Context()),
		"path":      r.URL.Path,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})

	respondJSON(w, http.StatusUnprocessableEntity, models.ValidationFailureResponse{
		Error:  stdErr.Error(),
		Status: models.StatusFailed,
		Detail: result.Errors,
	})
}
