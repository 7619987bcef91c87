package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellValue(t *testing.T, row *Row, name string) float64 {
	t.Helper()
	c, ok := row.Get(name)
	require.True(t, ok, "column %q missing", name)
	require.Equal(t, Numeric, c.Kind)
	return c.Num
}

func TestRow_SetKeepsOrder(t *testing.T) {
	row := NewRow().Set("a", Num(1)).Set("b", Cat("x")).Set("a", Num(2))

	assert.Equal(t, []string{"a", "b"}, row.Columns())
	assert.Equal(t, 2, row.Len())
	c, _ := row.Get("a")
	assert.Equal(t, 2.0, c.Num)

	clone := row.Clone()
	clone.Set("c", Num(3))
	assert.Equal(t, 2, row.Len())
	assert.Equal(t, 3, clone.Len())

	cols := row.Columns()
	cols[0] = "mutated"
	assert.Equal(t, "a", row.Columns()[0])
}

func TestCell_Missing(t *testing.T) {
	assert.True(t, Missing().IsMissing())
	assert.False(t, Num(0).IsMissing())
	assert.False(t, Cat("").IsMissing())
}

func TestAddFeatures_Smoker(t *testing.T) {
	tests := []struct {
		name         string
		age, bmi     float64
		wantSmoker   float64
		wantAgeSmoke float64
	}{
		{name: "young", age: 19, bmi: 27.9, wantSmoker: 27.9, wantAgeSmoke: 19},
		{name: "older", age: 62, bmi: 36.1, wantSmoker: 36.1, wantAgeSmoke: 62},
		{name: "zero bmi", age: 40, bmi: 0, wantSmoker: 0, wantAgeSmoke: 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := AddFeatures{}.Transform(applicantRow(tt.age, "female", tt.bmi, 0, "yes", "southwest"))
			require.NoError(t, err)
			assert.Equal(t, tt.bmi, cellValue(t, out, ColumnSmokerBMI))
			assert.Equal(t, tt.age, cellValue(t, out, ColumnAgeSmoker))
		})
	}
}

func TestAddFeatures_NonSmoker(t *testing.T) {
	for _, age := range []float64{18, 30, 64} {
		out, err := AddFeatures{}.Transform(applicantRow(age, "male", 33.3, 2, "no", "northeast"))
		require.NoError(t, err)
		assert.Equal(t, 0.0, cellValue(t, out, ColumnSmokerBMI))
		assert.Equal(t, 0.0, cellValue(t, out, ColumnAgeSmoker))
	}
}

func TestAddFeatures_UnrecognizedSmokerIsMissing(t *testing.T) {
	for _, smoker := range []string{"Yes", "NO", "", "sometimes"} {
		out, err := AddFeatures{}.Transform(applicantRow(30, "male", 25, 0, smoker, "northeast"))
		require.NoError(t, err)
		assert.True(t, math.IsNaN(cellValue(t, out, ColumnSmokerBMI)), smoker)
		assert.True(t, math.IsNaN(cellValue(t, out, ColumnAgeSmoker)), smoker)
	}
}

func TestAddFeatures_AppendsColumnsWithoutMutatingInput(t *testing.T) {
	in := applicantRow(30, "male", 25, 0, "yes", "northeast")

	out, err := AddFeatures{}.Transform(in)
	require.NoError(t, err)

	assert.Equal(t, rawColumns, in.Columns())
	assert.Equal(t, append(append([]string(nil), rawColumns...), ColumnSmokerBMI, ColumnAgeSmoker), out.Columns())
}

func TestAddFeatures_Idempotent(t *testing.T) {
	once, err := AddFeatures{}.Transform(applicantRow(52, "female", 30.8, 1, "yes", "northwest"))
	require.NoError(t, err)
	twice, err := AddFeatures{}.Transform(once)
	require.NoError(t, err)

	assert.Equal(t, once.Columns(), twice.Columns())
	for _, col := range []string{ColumnSmokerBMI, ColumnAgeSmoker} {
		assert.Equal(t, cellValue(t, once, col), cellValue(t, twice, col))
	}
}

func TestAddFeatures_MissingColumn(t *testing.T) {
	row := NewRow().Set("age", Num(30)).Set("smoker", Cat("no"))

	_, err := AddFeatures{}.Transform(row)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), `"bmi"`)
}

func TestAddFeatures_FeatureNamesOut(t *testing.T) {
	tr := AddFeatures{}
	assert.Equal(t, []string{ColumnSmokerBMI, ColumnAgeSmoker}, tr.FeatureNamesOut(nil))
	assert.Equal(t, []string{"age", "bmi", ColumnSmokerBMI, ColumnAgeSmoker}, tr.FeatureNamesOut([]string{"age", "bmi"}))
	assert.Equal(t, []string{"age", ColumnSmokerBMI, ColumnAgeSmoker}, tr.FeatureNamesOut([]string{"age", ColumnSmokerBMI}))
}

func TestTransformerByName(t *testing.T) {
	tr, err := TransformerByName("add_features")
	require.NoError(t, err)
	assert.IsType(t, AddFeatures{}, tr)

	tr, err = TransformerByName("none")
	require.NoError(t, err)
	assert.Equal(t, []string{"age"}, tr.FeatureNamesOut([]string{"age"}))

	_, err = TransformerByName("__main__.AddFeaturesTransformer")
	assert.Error(t, err)
}
