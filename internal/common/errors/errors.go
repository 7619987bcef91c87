// Package errors provides standardized error handling for the prediction service.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	ErrCodeModelNotLoaded  ErrorCode = "MODEL_NOT_LOADED"
	ErrCodeModelLoadFailed ErrorCode = "MODEL_LOAD_FAILED"

	ErrCodeFeatureMismatch  ErrorCode = "FEATURE_MISMATCH"
	ErrCodeUnknownCategory  ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeMissingValue     ErrorCode = "MISSING_VALUE"
	ErrCodePredictionFailed ErrorCode = "PREDICTION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

// Error renders the message followed by the details, which is what clients
// see in a failure payload.
func (e *StandardError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns the same error annotated with an extra key.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidRequestError reports a request rejected before it reached the model.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewModelNotLoadedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotLoaded,
		Message:   "Model is not loaded",
		Details:   "no model artifact was loaded at startup",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewModelLoadFailedError(path string, err error) *StandardError {
	return wrap(ErrCodeModelLoadFailed, "Failed to load model", err).WithMetadata("path", path)
}

func NewFeatureMismatchError(err error) *StandardError {
	return wrap(ErrCodeFeatureMismatch, "Feature names do not match the model", err)
}

func NewUnknownCategoryError(err error) *StandardError {
	return wrap(ErrCodeUnknownCategory, "Unknown categorical value", err)
}

func NewMissingValueError(err error) *StandardError {
	return wrap(ErrCodeMissingValue, "Input contains missing values", err)
}

func NewPredictionFailedError(err error) *StandardError {
	return wrap(ErrCodePredictionFailed, "Prediction failed", err)
}

// wrap keeps err as the cause so errors.Is still sees pipeline sentinels.
func wrap(code ErrorCode, message string, err error) *StandardError {
	e := &StandardError{Code: code, Message: message, Timestamp: time.Now().UTC(), cause: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return wrap(ErrCodeInternal, "Unexpected error", err)
}

// HasCode reports whether err is a StandardError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// GetErrorCategory separates caller-caused failures from service-side ones.
// The category is used for logs and metric labels only; responses do not
// expose it.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeUnknownCategory, ErrCodeMissingValue:
		return "CLIENT"
	}
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "MODEL_"):
		return "MODEL"
	case strings.Contains(codeStr, "FEATURE") || strings.Contains(codeStr, "PREDICTION"):
		return "INFERENCE"
	default:
		return "OTHER"
	}
}
