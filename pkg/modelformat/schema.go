// pkg/modelformat/schema.go
package modelformat

import "time"

// CurrentVersion is the only artifact layout this package reads and writes.
const CurrentVersion = 1

const (
	TransformerAddFeatures = "add_features"
	TransformerNone        = "none"

	KindRandomForest     = "random_forest"
	KindDecisionTree     = "decision_tree"
	KindGradientBoosting = "gradient_boosting"

	HandleUnknownError  = "error"
	HandleUnknownIgnore = "ignore"

	DropNone  = ""
	DropFirst = "first"
)

// Artifact is the serialized form of a trained prediction pipeline.
type Artifact struct {
	FormatVersion  int          `json:"format_version"`
	Name           string       `json:"name"`
	Target         string       `json:"target,omitempty"`
	CreatedAt      *time.Time   `json:"created_at,omitempty"`
	FeatureNamesIn []string     `json:"feature_names_in"`
	Transformer    string       `json:"transformer"`
	Preprocessor   Preprocessor `json:"preprocessor"`
	Estimator      Estimator    `json:"estimator"`
}

// Preprocessor describes the column layout of the estimator's input vector:
// numeric columns first, in order, then one-hot blocks for each categorical
// column.
type Preprocessor struct {
	Numeric       []string            `json:"numeric"`
	Categorical   []CategoricalColumn `json:"categorical"`
	HandleUnknown string              `json:"handle_unknown,omitempty"`
}

type CategoricalColumn struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
	Drop       string   `json:"drop,omitempty"`
}

type Estimator struct {
	Kind         string  `json:"kind"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Init         float64 `json:"init,omitempty"`
	Trees        []Tree  `json:"trees"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is one entry of a flattened regression tree. Internal nodes route to
// Left when x[Feature] <= Threshold.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// EncodedWidth is the length of the vector the preprocessor produces.
func (p Preprocessor) EncodedWidth() int {
	width := len(p.Numeric)
	for _, c := range p.Categorical {
		width += len(c.Categories)
		if c.Drop == DropFirst && len(c.Categories) > 0 {
			width--
		}
	}
	return width
}
