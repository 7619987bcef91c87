package modelformat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArtifact() *Artifact {
	return &Artifact{
		FormatVersion:  CurrentVersion,
		Name:           "unit",
		Target:         "charges",
		FeatureNamesIn: []string{"age", "sex", "bmi", "children", "smoker", "region"},
		Transformer:    TransformerAddFeatures,
		Preprocessor: Preprocessor{
			Numeric: []string{"age", "bmi", "children", "smoker_bmi", "age_smoker"},
			Categorical: []CategoricalColumn{
				{Column: "sex", Categories: []string{"female", "male"}, Drop: DropFirst},
				{Column: "smoker", Categories: []string{"no", "yes"}},
			},
			HandleUnknown: HandleUnknownError,
		},
		Estimator: Estimator{
			Kind: KindRandomForest,
			Trees: []Tree{{Nodes: []Node{
				{Feature: 7, Threshold: 0.5, Left: 1, Right: 2},
				{Leaf: true, Value: 8000},
				{Leaf: true, Value: 32000},
			}}},
		},
	}
}

func TestPreprocessor_EncodedWidth(t *testing.T) {
	// 5 numeric + (2 - 1 dropped) + 2
	assert.Equal(t, 8, validArtifact().Preprocessor.EncodedWidth())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Artifact)
		wantErr error
		msg     string
	}{
		{name: "valid", mutate: func(a *Artifact) {}},
		{
			name:    "future version",
			mutate:  func(a *Artifact) { a.FormatVersion = 2 },
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "no input features",
			mutate:  func(a *Artifact) { a.FeatureNamesIn = nil },
			wantErr: ErrInvalidArtifact,
			msg:     "feature_names_in is empty",
		},
		{
			name:    "duplicate input feature",
			mutate:  func(a *Artifact) { a.FeatureNamesIn = []string{"age", "age"} },
			wantErr: ErrInvalidArtifact,
			msg:     `repeats "age"`,
		},
		{
			name:    "unknown transformer",
			mutate:  func(a *Artifact) { a.Transformer = "custom.AddFeaturesTransformer" },
			wantErr: ErrInvalidArtifact,
			msg:     "unknown transformer",
		},
		{
			name:    "bad handle_unknown",
			mutate:  func(a *Artifact) { a.Preprocessor.HandleUnknown = "infrequent" },
			wantErr: ErrInvalidArtifact,
		},
		{
			name:    "empty categories",
			mutate:  func(a *Artifact) { a.Preprocessor.Categorical[0].Categories = nil },
			wantErr: ErrInvalidArtifact,
			msg:     "has no categories",
		},
		{
			name:    "column selected twice",
			mutate:  func(a *Artifact) { a.Preprocessor.Numeric = append(a.Preprocessor.Numeric, "smoker") },
			wantErr: ErrInvalidArtifact,
			msg:     `selects "smoker" twice`,
		},
		{
			name:    "unknown estimator",
			mutate:  func(a *Artifact) { a.Estimator.Kind = "svr" },
			wantErr: ErrInvalidArtifact,
		},
		{
			name: "decision tree with two trees",
			mutate: func(a *Artifact) {
				a.Estimator.Kind = KindDecisionTree
				a.Estimator.Trees = append(a.Estimator.Trees, a.Estimator.Trees[0])
			},
			wantErr: ErrInvalidArtifact,
			msg:     "exactly one tree",
		},
		{
			name:    "boosting without learning rate",
			mutate:  func(a *Artifact) { a.Estimator.Kind = KindGradientBoosting },
			wantErr: ErrInvalidArtifact,
			msg:     "learning_rate",
		},
		{
			name:    "feature out of range",
			mutate:  func(a *Artifact) { a.Estimator.Trees[0].Nodes[0].Feature = 8 },
			wantErr: ErrInvalidArtifact,
			msg:     "outside [0, 8)",
		},
		{
			name:    "backward child",
			mutate:  func(a *Artifact) { a.Estimator.Trees[0].Nodes[0].Left = 0 },
			wantErr: ErrInvalidArtifact,
			msg:     "invalid child 0",
		},
		{
			name:    "empty tree",
			mutate:  func(a *Artifact) { a.Estimator.Trees[0].Nodes = nil },
			wantErr: ErrInvalidArtifact,
			msg:     "no nodes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validArtifact()
			tt.mutate(a)
			err := a.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, Save(path, validArtifact()))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unit", loaded.Name)
	assert.Equal(t, validArtifact().Estimator, loaded.Estimator)
	assert.Equal(t, validArtifact().Preprocessor, loaded.Preprocessor)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read artifact")

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("\x80\x04\x95 pickle"), 0o600))
	_, err = Load(garbage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse artifact")
}

func TestSave_RejectsInvalid(t *testing.T) {
	a := validArtifact()
	a.FormatVersion = 0
	err := Save(filepath.Join(t.TempDir(), "model.json"), a)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
