// Package pipeline runs a loaded prediction pipeline: the feature
// transformer, the column encoder and the tree estimator.
package pipeline

import "math"

// Kind distinguishes numeric cells from categorical ones.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

// Cell is one value of a Row. A numeric NaN is a missing value.
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
}

func Num(v float64) Cell { return Cell{Kind: Numeric, Num: v} }

func Cat(s string) Cell { return Cell{Kind: Categorical, Str: s} }

// Missing returns a missing numeric cell.
func Missing() Cell { return Num(math.NaN()) }

func (c Cell) IsMissing() bool {
	return c.Kind == Numeric && math.IsNaN(c.Num)
}

// Row is a single tabular record with ordered, named columns.
type Row struct {
	columns []string
	cells   map[string]Cell
}

func NewRow() *Row {
	return &Row{cells: make(map[string]Cell)}
}

// Set writes a cell, appending the column if it is new and keeping its
// position otherwise.
func (r *Row) Set(name string, c Cell) *Row {
	if _, ok := r.cells[name]; !ok {
		r.columns = append(r.columns, name)
	}
	r.cells[name] = c
	return r
}

func (r *Row) Get(name string) (Cell, bool) {
	c, ok := r.cells[name]
	return c, ok
}

// Columns returns a copy of the column names in order.
func (r *Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

func (r *Row) Len() int { return len(r.columns) }

func (r *Row) Clone() *Row {
	out := &Row{
		columns: r.Columns(),
		cells:   make(map[string]Cell, len(r.cells)),
	}
	for k, v := range r.cells {
		out.cells[k] = v
	}
	return out
}
