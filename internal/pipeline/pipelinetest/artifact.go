// Package pipelinetest provides a small, hand-checked model artifact for tests.
package pipelinetest

import (
	"path/filepath"

	"insurance-predictor/pkg/modelformat"
)

// Columns is the raw applicant column order the artifact was fitted on.
var Columns = []string{"age", "sex", "bmi", "children", "smoker", "region"}

// Artifact is a two-tree forest over the standard engineered layout.
// Encoded layout: age, bmi, children, smoker_bmi, age_smoker (0-4),
// sex_female, sex_male (5-6), smoker_no, smoker_yes (7-8),
// region_northeast..region_southwest (9-12).
func Artifact() *modelformat.Artifact {
	return &modelformat.Artifact{
		FormatVersion:  modelformat.CurrentVersion,
		Name:           "insurance-test-forest",
		Target:         "charges",
		FeatureNamesIn: append([]string(nil), Columns...),
		Transformer:    modelformat.TransformerAddFeatures,
		Preprocessor: modelformat.Preprocessor{
			Numeric: []string{"age", "bmi", "children", "smoker_bmi", "age_smoker"},
			Categorical: []modelformat.CategoricalColumn{
				{Column: "sex", Categories: []string{"female", "male"}},
				{Column: "smoker", Categories: []string{"no", "yes"}},
				{Column: "region", Categories: []string{"northeast", "northwest", "southeast", "southwest"}},
			},
			HandleUnknown: modelformat.HandleUnknownError,
		},
		Estimator: modelformat.Estimator{
			Kind: modelformat.KindRandomForest,
			Trees: []modelformat.Tree{
				{Nodes: []modelformat.Node{
					{Feature: 8, Threshold: 0.5, Left: 1, Right: 2},
					{Leaf: true, Value: 8000},
					{Feature: 3, Threshold: 30, Left: 3, Right: 4},
					{Leaf: true, Value: 20000},
					{Leaf: true, Value: 40000},
				}},
				{Nodes: []modelformat.Node{
					{Feature: 0, Threshold: 40, Left: 1, Right: 2},
					{Leaf: true, Value: 4000},
					{Leaf: true, Value: 12000},
				}},
			},
		},
	}
}

// Save writes Artifact to dir and returns its path.
func Save(dir string) (string, error) {
	path := filepath.Join(dir, "insurance_test_forest.json")
	return path, modelformat.Save(path, Artifact())
}
