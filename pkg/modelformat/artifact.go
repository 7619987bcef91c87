// pkg/modelformat/artifact.go
package modelformat

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrUnsupportedVersion = errors.New("unsupported artifact format version")
	ErrInvalidArtifact    = errors.New("invalid artifact")
)

// Load reads and validates an artifact file.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates an artifact document.
func Parse(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Save writes the artifact as indented JSON.
func Save(path string, a *Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArtifact, fmt.Sprintf(format, args...))
}

// Validate checks the structure of the artifact. Column names produced by the
// transformer are checked by whoever builds the pipeline.
func (a *Artifact) Validate() error {
	if a.FormatVersion != CurrentVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, a.FormatVersion, CurrentVersion)
	}
	if len(a.FeatureNamesIn) == 0 {
		return invalid("feature_names_in is empty")
	}
	if dup := firstDuplicate(a.FeatureNamesIn); dup != "" {
		return invalid("feature_names_in repeats %q", dup)
	}

	switch a.Transformer {
	case TransformerAddFeatures, TransformerNone:
	default:
		return invalid("unknown transformer %q", a.Transformer)
	}

	if err := a.Preprocessor.validate(); err != nil {
		return err
	}
	return a.Estimator.validate(a.Preprocessor.EncodedWidth())
}

func (p Preprocessor) validate() error {
	switch p.HandleUnknown {
	case "", HandleUnknownError, HandleUnknownIgnore:
	default:
		return invalid("handle_unknown must be %q or %q", HandleUnknownError, HandleUnknownIgnore)
	}

	columns := append([]string{}, p.Numeric...)
	for _, c := range p.Categorical {
		columns = append(columns, c.Column)
		if len(c.Categories) == 0 {
			return invalid("categorical column %q has no categories", c.Column)
		}
		if dup := firstDuplicate(c.Categories); dup != "" {
			return invalid("categorical column %q repeats category %q", c.Column, dup)
		}
		if c.Drop != DropNone && c.Drop != DropFirst {
			return invalid("categorical column %q has unknown drop %q", c.Column, c.Drop)
		}
	}
	if len(columns) == 0 {
		return invalid("preprocessor selects no columns")
	}
	if dup := firstDuplicate(columns); dup != "" {
		return invalid("preprocessor selects %q twice", dup)
	}
	return nil
}

func (e Estimator) validate(width int) error {
	switch e.Kind {
	case KindRandomForest, KindGradientBoosting:
	case KindDecisionTree:
		if len(e.Trees) != 1 {
			return invalid("decision_tree needs exactly one tree, got %d", len(e.Trees))
		}
	default:
		return invalid("unknown estimator kind %q", e.Kind)
	}
	if len(e.Trees) == 0 {
		return invalid("estimator has no trees")
	}
	if e.Kind == KindGradientBoosting && e.LearningRate <= 0 {
		return invalid("gradient_boosting needs a positive learning_rate")
	}

	for i, tree := range e.Trees {
		if err := tree.validate(width); err != nil {
			return invalid("tree %d: %v", i, err)
		}
	}
	return nil
}

// Children must come after their parent, which rules out cycles and matches
// the depth-first order trees are exported in.
func (t Tree) validate(width int) error {
	if len(t.Nodes) == 0 {
		return errors.New("no nodes")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d uses feature %d outside [0, %d)", i, n.Feature, width)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

func firstDuplicate(values []string) string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v
		}
		seen[v] = struct{}{}
	}
	return ""
}
