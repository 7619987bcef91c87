package pipeline

import (
	"errors"
	"fmt"

	"insurance-predictor/pkg/modelformat"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrMissingValue    = errors.New("input contains NaN")
)

type categoricalBlock struct {
	column string
	index  map[string]int // category -> offset within the block, -1 when dropped
	width  int
	offset int
}

// ColumnEncoder turns a transformed row into the estimator's input vector:
// numeric columns pass through, categorical columns are one-hot encoded.
type ColumnEncoder struct {
	numeric       []string
	blocks        []categoricalBlock
	width         int
	ignoreUnknown bool
}

func NewColumnEncoder(p modelformat.Preprocessor) *ColumnEncoder {
	enc := &ColumnEncoder{
		numeric:       append([]string(nil), p.Numeric...),
		ignoreUnknown: p.HandleUnknown == modelformat.HandleUnknownIgnore,
	}

	offset := len(p.Numeric)
	for _, c := range p.Categorical {
		block := categoricalBlock{
			column: c.Column,
			index:  make(map[string]int, len(c.Categories)),
			offset: offset,
		}
		for i, cat := range c.Categories {
			pos := i
			if c.Drop == modelformat.DropFirst {
				pos = i - 1
			}
			block.index[cat] = pos
		}
		block.width = len(c.Categories)
		if c.Drop == modelformat.DropFirst {
			block.width--
		}
		offset += block.width
		enc.blocks = append(enc.blocks, block)
	}
	enc.width = offset
	return enc
}

// Width is the length of encoded vectors.
func (e *ColumnEncoder) Width() int { return e.width }

// InputColumns lists every column the encoder reads.
func (e *ColumnEncoder) InputColumns() []string {
	cols := append([]string(nil), e.numeric...)
	for _, b := range e.blocks {
		cols = append(cols, b.column)
	}
	return cols
}

// FeatureNamesOut names each position of the encoded vector.
func (e *ColumnEncoder) FeatureNamesOut() []string {
	names := make([]string, e.width)
	copy(names, e.numeric)
	for _, b := range e.blocks {
		for cat, pos := range b.index {
			if pos >= 0 {
				names[b.offset+pos] = b.column + "_" + cat
			}
		}
	}
	return names
}

func (e *ColumnEncoder) Encode(row *Row) ([]float64, error) {
	vec := make([]float64, e.width)

	for i, name := range e.numeric {
		c, err := lookup(row, name)
		if err != nil {
			return nil, err
		}
		if c.Kind != Numeric {
			return nil, fmt.Errorf("column %q: expected a number, got %q", name, c.Str)
		}
		if c.IsMissing() {
			return nil, fmt.Errorf("%w in column %q", ErrMissingValue, name)
		}
		vec[i] = c.Num
	}

	for _, b := range e.blocks {
		c, err := lookup(row, b.column)
		if err != nil {
			return nil, err
		}
		if c.Kind != Categorical {
			return nil, fmt.Errorf("column %q: expected a category, got %v", b.column, c.Num)
		}
		pos, ok := b.index[c.Str]
		if !ok {
			if e.ignoreUnknown {
				continue
			}
			return nil, fmt.Errorf("%w: found unknown categories [%s] in column %q during transform", ErrUnknownCategory, c.Str, b.column)
		}
		if pos >= 0 {
			vec[b.offset+pos] = 1
		}
	}

	return vec, nil
}
