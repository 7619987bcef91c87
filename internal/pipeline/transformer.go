package pipeline

import (
	"errors"
	"fmt"
	"math"

	"insurance-predictor/pkg/modelformat"
)

const (
	ColumnSmokerBMI = "smoker_bmi"
	ColumnAgeSmoker = "age_smoker"
)

var ErrMissingColumn = errors.New("missing column")

// Transformer derives extra columns from a row before encoding.
type Transformer interface {
	Transform(row *Row) (*Row, error)
	FeatureNamesOut(in []string) []string
}

var smokerIndicator = map[string]float64{"yes": 1, "no": 0}

// AddFeatures appends smoker-weighted BMI and age. Smoker values other than
// "yes" and "no" give missing derived values. Reapplying it overwrites the
// derived columns with identical values.
type AddFeatures struct{}

func (AddFeatures) Transform(row *Row) (*Row, error) {
	smoker, err := lookup(row, "smoker")
	if err != nil {
		return nil, err
	}
	age, err := lookup(row, "age")
	if err != nil {
		return nil, err
	}
	bmi, err := lookup(row, "bmi")
	if err != nil {
		return nil, err
	}

	indicator := math.NaN()
	if smoker.Kind == Categorical {
		if v, ok := smokerIndicator[smoker.Str]; ok {
			indicator = v
		}
	}

	out := row.Clone()
	out.Set(ColumnSmokerBMI, Num(numeric(bmi)*indicator))
	out.Set(ColumnAgeSmoker, Num(numeric(age)*indicator))
	return out, nil
}

func (AddFeatures) FeatureNamesOut(in []string) []string {
	derived := []string{ColumnSmokerBMI, ColumnAgeSmoker}
	if in == nil {
		return derived
	}
	out := append([]string(nil), in...)
	for _, name := range derived {
		if !contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// Identity passes rows through unchanged.
type Identity struct{}

func (Identity) Transform(row *Row) (*Row, error) { return row.Clone(), nil }

func (Identity) FeatureNamesOut(in []string) []string { return append([]string(nil), in...) }

// TransformerByName resolves the transformer named in an artifact.
func TransformerByName(name string) (Transformer, error) {
	switch name {
	case modelformat.TransformerAddFeatures:
		return AddFeatures{}, nil
	case modelformat.TransformerNone:
		return Identity{}, nil
	}
	return nil, fmt.Errorf("unknown transformer %q", name)
}

func lookup(row *Row, name string) (Cell, error) {
	c, ok := row.Get(name)
	if !ok {
		return Cell{}, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return c, nil
}

// numeric treats a categorical cell as missing, the way a numeric column
// holding a non-number is coerced.
func numeric(c Cell) float64 {
	if c.Kind != Numeric {
		return math.NaN()
	}
	return c.Num
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
