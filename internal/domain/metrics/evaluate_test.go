package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalInput() Input {
	return Input{
		Hemoglobin:   "14",
		FastingSugar: "100",
		Systolic:     "120",
		Diastolic:    "80",
		Cholesterol:  "180",
		HeightCM:     "170",
		WeightKG:     "65",
	}
}

func TestEvaluateAllNormal(t *testing.T) {
	res := Evaluate(normalInput())

	require.Len(t, res.Classifications, len(Metrics))
	for i, c := range res.Classifications {
		assert.Equal(t, Metrics[i], c.Metric)
		assert.Equal(t, StatusNormal, c.Status, c.Metric)
	}
	require.NotNil(t, res.Summary)
	assert.Equal(t, OverallStable, res.Summary.Status)
	assert.True(t, res.Values.Complete())
	assert.InDelta(t, 22.49, *res.Values.BMI, 0.01)
}

func TestEvaluateSingleAbnormalIsMildConcern(t *testing.T) {
	in := normalInput()
	in.FastingSugar = "150"

	res := Evaluate(in)

	sugar, ok := res.Classification(FastingSugar)
	require.True(t, ok)
	assert.Equal(t, StatusHigh, sugar.Status)
	assert.Equal(t, OverallMildConcern, res.Summary.Status)
}

func TestEvaluateErrorTakesPrecedence(t *testing.T) {
	in := normalInput()
	in.FastingSugar = ""
	in.Cholesterol = "300"
	in.Hemoglobin = "5"

	res := Evaluate(in)

	sugar, _ := res.Classification(FastingSugar)
	assert.Equal(t, StatusError, sugar.Status)
	assert.Equal(t, "Please enter a valid sugar value.", sugar.Advice)
	assert.Equal(t, OverallDataIssue, res.Summary.Status)
	assert.Nil(t, res.Values.FastingSugar)
	assert.False(t, res.Values.Complete())
	require.NotNil(t, res.Values.Hemoglobin)
	assert.Equal(t, 5.0, *res.Values.Hemoglobin)
}

func TestEvaluateBloodPressureComponentsFailTogether(t *testing.T) {
	in := normalInput()
	in.Diastolic = "80.5"

	res := Evaluate(in)

	bp, _ := res.Classification(BloodPressure)
	assert.Equal(t, StatusError, bp.Status)
	assert.Nil(t, res.Values.Systolic)
	assert.Nil(t, res.Values.Diastolic)
}

func TestEvaluateBMIInputsFailTogether(t *testing.T) {
	in := normalInput()
	in.WeightKG = "heavy"

	res := Evaluate(in)

	bmi, _ := res.Classification(BMI)
	assert.Equal(t, StatusError, bmi.Status)
	assert.Equal(t, "Error", bmi.Label)
	assert.Nil(t, res.Values.HeightCM)
	assert.Nil(t, res.Values.WeightKG)
	assert.Nil(t, res.Values.BMI)
	// the other four metrics still parsed but the set is incomplete
	assert.NotNil(t, res.Values.Hemoglobin)
	assert.False(t, res.Values.Complete())
}

func TestEvaluateZeroHeightIsError(t *testing.T) {
	in := normalInput()
	in.HeightCM = "0"

	res := Evaluate(in)
	bmi, _ := res.Classification(BMI)
	assert.Equal(t, StatusError, bmi.Status)
	assert.Nil(t, res.Values.HeightCM)
	assert.Nil(t, res.Values.BMI)
	assert.False(t, res.Values.Complete())
	assert.Equal(t, OverallDataIssue, res.Summary.Status)
}

func TestEvaluateZeroWeightIsUnderweight(t *testing.T) {
	in := normalInput()
	in.WeightKG = "0"

	res := Evaluate(in)
	bmi, _ := res.Classification(BMI)
	assert.Equal(t, StatusUnderweight, bmi.Status)
	assert.Equal(t, "0.0 (Underweight)", bmi.Label)
	require.NotNil(t, res.Values.BMI)
	assert.Zero(t, *res.Values.BMI)
	assert.True(t, res.Values.Complete())
	assert.Equal(t, OverallMildConcern, res.Summary.Status)
}

func TestEvaluateNegativeHeightIsClassified(t *testing.T) {
	in := normalInput()
	in.HeightCM = "-170"

	res := Evaluate(in)
	bmi, _ := res.Classification(BMI)
	assert.Equal(t, StatusNormal, bmi.Status)
	assert.Equal(t, "22.5 (Normal)", bmi.Label)
	require.NotNil(t, res.Values.HeightCM)
	assert.Equal(t, -170.0, *res.Values.HeightCM)
	assert.True(t, res.Values.Complete())
}

func TestEvaluateHexIsError(t *testing.T) {
	in := normalInput()
	in.Hemoglobin = "0x1p4"

	hb, _ := Evaluate(in).Classification(Hemoglobin)
	assert.Equal(t, StatusError, hb.Status)
}

func TestEvaluateEmptyInput(t *testing.T) {
	res := Evaluate(Input{})

	require.Len(t, res.Classifications, len(Metrics))
	for _, c := range res.Classifications {
		assert.Equal(t, StatusError, c.Status)
	}
	require.NotNil(t, res.Summary)
	assert.Equal(t, OverallDataIssue, res.Summary.Status)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	in := normalInput()
	in.Cholesterol = "220"
	assert.Equal(t, Evaluate(in), Evaluate(in))
}

func TestEvaluateHeightWeightExample(t *testing.T) {
	in := normalInput()
	in.WeightKG = "70"

	bmi, _ := Evaluate(in).Classification(BMI)
	assert.Equal(t, StatusNormal, bmi.Status)
	assert.Equal(t, "24.2 (Normal)", bmi.Label)
}
