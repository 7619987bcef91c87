package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-predictor/internal/common/validation"
)

func TestApplicantSchema(t *testing.T) {
	v := validation.MustNewValidator(ApplicantSchema)

	tests := []struct {
		name    string
		body    string
		valid   bool
		missing string
	}{
		{
			name:  "reference request",
			body:  `{"age":30,"sex":"male","bmi":25.0,"children":0,"smoker":"no","region":"northeast"}`,
			valid: true,
		},
		{
			name:  "categorical values are not constrained",
			body:  `{"age":30,"sex":"unknown","bmi":25,"children":0,"smoker":"perhaps","region":"mars"}`,
			valid: true,
		},
		{
			name:    "missing region",
			body:    `{"age":30,"sex":"male","bmi":25.0,"children":0,"smoker":"no"}`,
			missing: "region",
		},
		{
			name:    "missing age",
			body:    `{"sex":"male","bmi":25.0,"children":0,"smoker":"no","region":"northeast"}`,
			missing: "age",
		},
		{
			name:    "bmi as string",
			body:    `{"age":30,"sex":"male","bmi":"25","children":0,"smoker":"no","region":"northeast"}`,
			missing: "bmi",
		},
		{
			name:    "smoker as boolean",
			body:    `{"age":30,"sex":"male","bmi":25,"children":0,"smoker":false,"region":"northeast"}`,
			missing: "smoker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateBytes([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.missing != "" {
				fields := make([]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					fields = append(fields, e.Field)
				}
				assert.Contains(t, fields, tt.missing)
			}
		})
	}
}

func TestDecodeApplicant(t *testing.T) {
	rec, err := DecodeApplicant([]byte(`{"age":30.0,"sex":"male","bmi":25,"children":2,"smoker":"no","region":"northeast","extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, ApplicantRecord{
		Age:      30,
		Sex:      "male",
		BMI:      25,
		Children: 2,
		Smoker:   "no",
		Region:   "northeast",
	}, rec)
}

func TestDecodeApplicant_Malformed(t *testing.T) {
	_, err := DecodeApplicant([]byte(`{"age":`))
	assert.Error(t, err)

	_, err = DecodeApplicant([]byte(`{"sex":"male"}`))
	assert.ErrorContains(t, err, "age")
}

func TestDecodeApplicant_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "huge age", body: `{"age":1e19,"sex":"male","bmi":25,"children":0,"smoker":"no","region":"northeast"}`, field: "age"},
		{name: "huge negative age", body: `{"age":-1e19,"sex":"male","bmi":25,"children":0,"smoker":"no","region":"northeast"}`, field: "age"},
		{name: "huge children", body: `{"age":30,"sex":"male","bmi":25,"children":9223372036854775808,"smoker":"no","region":"northeast"}`, field: "children"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeApplicant([]byte(tt.body))
			require.Error(t, err)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Contains(t, err.Error(), "out of range")
		})
	}
}

func TestDecodeApplicant_LargeInRange(t *testing.T) {
	rec, err := DecodeApplicant([]byte(`{"age":1e6,"sex":"male","bmi":25,"children":0,"smoker":"no","region":"northeast"}`))
	require.NoError(t, err)
	assert.Equal(t, 1000000, rec.Age)
}
