package pipeline

import (
	"errors"
	"fmt"

	"insurance-predictor/pkg/modelformat"
)

var ErrInvalidTree = errors.New("invalid tree state")

// Estimator maps an encoded vector to a prediction.
type Estimator interface {
	Predict(features []float64) (float64, error)
}

type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	leaf      bool
}

type regressionTree struct {
	nodes []treeNode
}

func newRegressionTree(t modelformat.Tree) regressionTree {
	nodes := make([]treeNode, len(t.Nodes))
	for i, n := range t.Nodes {
		nodes[i] = treeNode{
			feature:   n.Feature,
			threshold: n.Threshold,
			left:      n.Left,
			right:     n.Right,
			value:     n.Value,
			leaf:      n.Leaf,
		}
	}
	return regressionTree{nodes: nodes}
}

func (t regressionTree) predict(features []float64) (float64, error) {
	if len(t.nodes) == 0 {
		return 0, ErrInvalidTree
	}
	idx := 0
	for {
		node := t.nodes[idx]
		if node.leaf {
			return node.value, nil
		}
		if node.feature < 0 || node.feature >= len(features) {
			return 0, fmt.Errorf("feature index %d out of range", node.feature)
		}
		next := node.right
		if features[node.feature] <= node.threshold {
			next = node.left
		}
		if next <= idx || next >= len(t.nodes) {
			return 0, ErrInvalidTree
		}
		idx = next
	}
}

// Ensemble is a tree-based regressor: a random forest averages its trees, a
// single decision tree is a forest of one, and gradient boosting adds the
// scaled tree outputs to an initial estimate.
type Ensemble struct {
	kind         string
	trees        []regressionTree
	learningRate float64
	init         float64
	width        int
}

func NewEnsemble(e modelformat.Estimator, width int) (*Ensemble, error) {
	switch e.Kind {
	case modelformat.KindRandomForest, modelformat.KindDecisionTree, modelformat.KindGradientBoosting:
	default:
		return nil, fmt.Errorf("unknown estimator kind %q", e.Kind)
	}
	if len(e.Trees) == 0 {
		return nil, errors.New("estimator has no trees")
	}
	ens := &Ensemble{
		kind:         e.Kind,
		learningRate: e.LearningRate,
		init:         e.Init,
		width:        width,
		trees:        make([]regressionTree, len(e.Trees)),
	}
	for i, t := range e.Trees {
		ens.trees[i] = newRegressionTree(t)
	}
	return ens, nil
}

func (e *Ensemble) Kind() string { return e.kind }

func (e *Ensemble) NumTrees() int { return len(e.trees) }

func (e *Ensemble) Predict(features []float64) (float64, error) {
	if len(features) != e.width {
		return 0, fmt.Errorf("expected %d features, got %d", e.width, len(features))
	}

	var sum float64
	for i, t := range e.trees {
		v, err := t.predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += v
	}

	if e.kind == modelformat.KindGradientBoosting {
		return e.init + e.learningRate*sum, nil
	}
	return sum / float64(len(e.trees)), nil
}
