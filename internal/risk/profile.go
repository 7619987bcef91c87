// Package risk scores an applicant with fixed heuristics, independent of the
// trained model.
package risk

import "insurance-predictor/internal/models"

const (
	baseRisk   = 20
	maxRisk    = 100
	ageCutoff  = 50
	bmiCutoff  = 30.0
	childLimit = 2
)

// Index returns a 0-100 risk score.
func Index(a models.ApplicantRecord) int {
	risk := baseRisk
	if a.Age > ageCutoff {
		risk += 20
	}
	if a.BMI > bmiCutoff {
		risk += 20
	}
	if a.Smoker == "yes" {
		risk += 40
	}
	if a.Children > childLimit {
		risk += 10
	}
	if risk > maxRisk {
		return maxRisk
	}
	return risk
}

// ImpactFactors weighs each attribute's contribution, in display order.
func ImpactFactors(a models.ApplicantRecord) []models.ImpactFactor {
	return []models.ImpactFactor{
		{Name: "Age", Impact: pick(a.Age > ageCutoff, 30, 10)},
		{Name: "BMI", Impact: pick(a.BMI > bmiCutoff, 25, 10)},
		{Name: "Smoking", Impact: pick(a.Smoker == "yes", 40, 5)},
		{Name: "Children", Impact: pick(a.Children > childLimit, 15, 5)},
	}
}

// Profile bundles the index and factors into a response.
func Profile(a models.ApplicantRecord) models.RiskProfileResponse {
	return models.RiskProfileResponse{
		RiskIndex:     Index(a),
		ImpactFactors: ImpactFactors(a),
		Status:        models.StatusSuccess,
	}
}

func pick(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
