package models

import "insurance-predictor/internal/common/validation"

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type PredictionResponse struct {
	ChargesPredites float64 `json:"charges_predites"`
	Status          string  `json:"status"`
}

type FailureResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// ValidationFailureResponse is returned with 422 when a body is rejected
// before reaching the model.
type ValidationFailureResponse struct {
	Error  string                       `json:"error"`
	Status string                       `json:"status"`
	Detail []validation.ValidationError `json:"detail"`
}

type ImpactFactor struct {
	Name   string `json:"name"`
	Impact int    `json:"impact"`
}

type RiskProfileResponse struct {
	RiskIndex     int            `json:"risk_index"`
	ImpactFactors []ImpactFactor `json:"impact_factors"`
	Status        string         `json:"status"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Model       string `json:"model,omitempty"`
	Time        string `json:"time"`
}
