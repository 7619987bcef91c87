package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"insurance-predictor/pkg/modelformat"
)

var ErrFeatureMismatch = errors.New("the feature names should match those that were passed during fit")

// Pipeline composes the feature transformer, the column encoder and the
// estimator. It is immutable once built and safe for concurrent use.
type Pipeline struct {
	name           string
	target         string
	featureNamesIn []string
	transformer    Transformer
	encoder        *ColumnEncoder
	estimator      *Ensemble
}

// Load reads an artifact from disk and builds the pipeline it describes.
func Load(path string) (*Pipeline, error) {
	artifact, err := modelformat.Load(path)
	if err != nil {
		return nil, err
	}
	return FromArtifact(artifact)
}

// FromArtifact builds a pipeline and checks that every column the encoder
// reads is produced by the transformer.
func FromArtifact(a *modelformat.Artifact) (*Pipeline, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	transformer, err := TransformerByName(a.Transformer)
	if err != nil {
		return nil, err
	}

	encoder := NewColumnEncoder(a.Preprocessor)
	available := transformer.FeatureNamesOut(a.FeatureNamesIn)
	for _, col := range encoder.InputColumns() {
		if !contains(available, col) {
			return nil, fmt.Errorf("%w: preprocessor reads %q which the transformer does not produce", modelformat.ErrInvalidArtifact, col)
		}
	}

	estimator, err := NewEnsemble(a.Estimator, encoder.Width())
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		name:           a.Name,
		target:         a.Target,
		featureNamesIn: append([]string(nil), a.FeatureNamesIn...),
		transformer:    transformer,
		encoder:        encoder,
		estimator:      estimator,
	}, nil
}

func (p *Pipeline) Name() string { return p.name }

func (p *Pipeline) Target() string { return p.target }

// FeatureNamesIn returns the raw columns the pipeline expects, in order.
func (p *Pipeline) FeatureNamesIn() []string {
	return append([]string(nil), p.featureNamesIn...)
}

// EncodedFeatureNames names each input of the estimator.
func (p *Pipeline) EncodedFeatureNames() []string {
	return p.encoder.FeatureNamesOut()
}

func (p *Pipeline) EstimatorKind() string { return p.estimator.Kind() }

func (p *Pipeline) NumTrees() int { return p.estimator.NumTrees() }

// Predict runs one row through the pipeline.
func (p *Pipeline) Predict(ctx context.Context, row *Row) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := p.checkFeatureNames(row.Columns()); err != nil {
		return 0, err
	}

	transformed, err := p.transformer.Transform(row)
	if err != nil {
		return 0, err
	}

	vec, err := p.encoder.Encode(transformed)
	if err != nil {
		return 0, err
	}

	return p.estimator.Predict(vec)
}

func (p *Pipeline) checkFeatureNames(got []string) error {
	if len(got) == len(p.featureNamesIn) {
		same := true
		for i := range got {
			if got[i] != p.featureNamesIn[i] {
				same = false
				break
			}
		}
		if same {
			return nil
		}
	}

	var unseen, missing []string
	for _, name := range got {
		if !contains(p.featureNamesIn, name) {
			unseen = append(unseen, name)
		}
	}
	for _, name := range p.featureNamesIn {
		if !contains(got, name) {
			missing = append(missing, name)
		}
	}

	var details []string
	if len(unseen) > 0 {
		details = append(details, "unseen at fit time: "+strings.Join(unseen, ", "))
	}
	if len(missing) > 0 {
		details = append(details, "seen at fit time, yet now missing: "+strings.Join(missing, ", "))
	}
	if len(details) == 0 {
		details = append(details, "columns are in a different order")
	}
	return fmt.Errorf("%w (%s)", ErrFeatureMismatch, strings.Join(details, "; "))
}
