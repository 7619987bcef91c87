package pipeline

import (
	"insurance-predictor/internal/pipeline/pipelinetest"
	"insurance-predictor/pkg/modelformat"
)

var rawColumns = pipelinetest.Columns

func testArtifact() *modelformat.Artifact { return pipelinetest.Artifact() }

func applicantRow(age float64, sex string, bmi float64, children float64, smoker, region string) *Row {
	return NewRow().
		Set("age", Num(age)).
		Set("sex", Cat(sex)).
		Set("bmi", Num(bmi)).
		Set("children", Num(children)).
		Set("smoker", Cat(smoker)).
		Set("region", Cat(region))
}
