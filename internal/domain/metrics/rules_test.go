package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHemoglobinBoundaries(t *testing.T) {
	cases := []struct {
		value float64
		want  Status
	}{
		{11.9, StatusLow},
		{12, StatusNormal},
		{14, StatusNormal},
		{16, StatusNormal},
		{16.1, StatusHigh},
	}
	for _, tc := range cases {
		got := ClassifyHemoglobin(tc.value)
		assert.Equal(t, tc.want, got.Status, "hb=%v", tc.value)
		assert.Equal(t, Hemoglobin, got.Metric)
		assert.NotEmpty(t, got.Advice)
	}
}

func TestClassifyFastingSugarBoundaries(t *testing.T) {
	assert.Equal(t, StatusLow, ClassifyFastingSugar(69.9).Status)
	assert.Equal(t, StatusNormal, ClassifyFastingSugar(70).Status)
	assert.Equal(t, StatusNormal, ClassifyFastingSugar(125).Status)
	assert.Equal(t, StatusHigh, ClassifyFastingSugar(125.1).Status)
}

func TestClassifyBloodPressure(t *testing.T) {
	cases := []struct {
		sys, dia int
		want     Status
	}{
		{120, 80, StatusNormal},
		{90, 60, StatusNormal},
		{140, 90, StatusNormal},
		{89, 80, StatusLow},
		{120, 59, StatusLow},
		{141, 80, StatusHigh},
		{120, 91, StatusHigh},
		// first matching rule wins: low is checked before high
		{200, 50, StatusLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyBloodPressure(tc.sys, tc.dia).Status, "bp=%d/%d", tc.sys, tc.dia)
	}
}

func TestClassifyCholesterol(t *testing.T) {
	assert.Equal(t, StatusNormal, ClassifyCholesterol(200).Status)
	assert.Equal(t, StatusBorderline, ClassifyCholesterol(201).Status)
	assert.Equal(t, StatusBorderline, ClassifyCholesterol(240).Status)
	assert.Equal(t, StatusHigh, ClassifyCholesterol(241).Status)
	assert.Equal(t, StatusNormal, ClassifyCholesterol(150).Status)
}

func TestClassifyBMILabel(t *testing.T) {
	c := ClassifyBMI(24.221)
	assert.Equal(t, StatusNormal, c.Status)
	assert.Equal(t, "24.2 (Normal)", c.Label)

	c = ClassifyBMI(17.3)
	assert.Equal(t, StatusUnderweight, c.Status)
	assert.Equal(t, "17.3 (Underweight)", c.Label)

	c = ClassifyBMI(24.95)
	assert.Equal(t, StatusOverweight, c.Status)

	assert.Equal(t, StatusNormal, ClassifyBMI(18.5).Status)
	assert.Equal(t, StatusNormal, ClassifyBMI(24.9).Status)
}

func TestComputeBMI(t *testing.T) {
	bmi, err := ComputeBMI(170, 70)
	require.NoError(t, err)
	assert.InDelta(t, 24.22, bmi, 0.01)

	_, err = ComputeBMI(0, 70)
	assert.ErrorIs(t, err, ErrZeroHeight)

	bmi, err = ComputeBMI(170, 0)
	require.NoError(t, err)
	assert.Zero(t, bmi)

	bmi, err = ComputeBMI(-170, 70)
	require.NoError(t, err)
	assert.InDelta(t, 24.22, bmi, 0.01)

	bmi, err = ComputeBMI(170, -1)
	require.NoError(t, err)
	assert.Less(t, bmi, 0.0)
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range []Status{StatusLow, StatusHigh, StatusBorderline, StatusUnderweight, StatusOverweight} {
		assert.True(t, s.Abnormal(), s)
		assert.False(t, s.Failed(), s)
	}
	assert.False(t, StatusNormal.Abnormal())
	assert.False(t, StatusError.Abnormal())
	assert.True(t, StatusError.Failed())
}

func TestParseReadings(t *testing.T) {
	assert.Equal(t, 14.5, ParseDecimal(" 14.5 ").Value)
	assert.ErrorIs(t, ParseDecimal("").Err, ErrMissing)
	assert.ErrorIs(t, ParseDecimal("abc").Err, ErrNotNumeric)
	assert.ErrorIs(t, ParseDecimal("NaN").Err, ErrNotFinite)
	assert.ErrorIs(t, ParseDecimal("inf").Err, ErrNotFinite)
	assert.ErrorIs(t, ParseDecimal("0x1p4").Err, ErrNotNumeric)
	assert.ErrorIs(t, ParseDecimal("0X10").Err, ErrNotNumeric)
	assert.Equal(t, -3.5, ParseDecimal("-3.5").Value)
	assert.Equal(t, 1500.0, ParseDecimal("1.5e3").Value)

	assert.Equal(t, 120, ParseInteger("120").Value)
	assert.ErrorIs(t, ParseInteger("120.5").Err, ErrNotInteger)
	assert.ErrorIs(t, ParseInteger("   ").Err, ErrMissing)

	assert.Nil(t, ParseInteger("x").Ptr())
	require.NotNil(t, ParseInteger("7").Ptr())
	assert.Equal(t, 7, *ParseInteger("7").Ptr())
}
