package models

import (
	"encoding/json"
	"fmt"
	"math"

	"insurance-predictor/internal/common/validation"
)

// ApplicantRecord is the raw input describing one insured person.
type ApplicantRecord struct {
	Age      int     `json:"age"`
	Sex      string  `json:"sex"`
	BMI      float64 `json:"bmi"`
	Children int     `json:"children"`
	Smoker   string  `json:"smoker"`
	Region   string  `json:"region"`
}

// ApplicantSchema checks primitive types only. Categorical fields accept any
// string; unknown levels are the model's concern.
var ApplicantSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"age":      {Type: "integer", Description: "Age in years"},
		"sex":      {Type: "string", Description: "Biological sex, male or female"},
		"bmi":      {Type: "number", Description: "Body-mass index"},
		"children": {Type: "integer", Description: "Number of dependents"},
		"smoker":   {Type: "string", Description: "Smoker status, yes or no"},
		"region":   {Type: "string", Description: "Residential region"},
	},
	Required: []string{"age", "sex", "bmi", "children", "smoker", "region"},
}

// FieldError names the input field a decode failure belongs to.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

type applicantPayload struct {
	Age      json.Number `json:"age"`
	Sex      string      `json:"sex"`
	BMI      json.Number `json:"bmi"`
	Children json.Number `json:"children"`
	Smoker   string      `json:"smoker"`
	Region   string      `json:"region"`
}

// DecodeApplicant converts a body that already passed ApplicantSchema.
// Integral floats such as 30.0 are accepted for integer fields.
func DecodeApplicant(body []byte) (ApplicantRecord, error) {
	var p applicantPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return ApplicantRecord{}, fmt.Errorf("decode applicant: %w", err)
	}

	age, err := toInt("age", p.Age)
	if err != nil {
		return ApplicantRecord{}, err
	}
	bmi, err := p.BMI.Float64()
	if err != nil {
		return ApplicantRecord{}, &FieldError{Field: "bmi", Err: err}
	}
	children, err := toInt("children", p.Children)
	if err != nil {
		return ApplicantRecord{}, err
	}

	return ApplicantRecord{
		Age:      age,
		Sex:      p.Sex,
		BMI:      bmi,
		Children: children,
		Smoker:   p.Smoker,
		Region:   p.Region,
	}, nil
}

// toInt rejects values a 64-bit int cannot hold instead of letting the
// conversion wrap.
func toInt(field string, n json.Number) (int, error) {
	f, err := n.Float64()
	if err != nil {
		return 0, &FieldError{Field: field, Err: err}
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, &FieldError{Field: field, Err: fmt.Errorf("%s is out of range", n)}
	}
	return int(f), nil
}
