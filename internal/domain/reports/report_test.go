package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthtrack/internal/domain/metrics"
)

func completeValues() metrics.Values {
	return metrics.Evaluate(metrics.Input{
		Hemoglobin:   "14",
		FastingSugar: "100",
		Systolic:     "120",
		Diastolic:    "80",
		Cholesterol:  "180",
		HeightCM:     "170",
		WeightKG:     "70",
	}).Values
}

func TestNewReportCopiesValues(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 15, 500, time.FixedZone("X", 3600))
	r, err := NewReport(CreateParams{Values: completeValues(), Owner: " u-1 ", CreatedAt: at})
	require.NoError(t, err)

	assert.Equal(t, 14.0, r.Hemoglobin)
	assert.Equal(t, 100.0, r.FastingSugar)
	assert.Equal(t, 120, r.Systolic)
	assert.Equal(t, 80, r.Diastolic)
	assert.Equal(t, 180.0, r.Cholesterol)
	assert.Equal(t, 170.0, r.HeightCM)
	assert.Equal(t, 70.0, r.WeightKG)
	assert.InDelta(t, 24.22, r.BMI, 0.01)
	assert.Equal(t, Owner("u-1"), r.Owner)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 30, 15, 0, time.UTC), r.CreatedAt)
}

func TestNewReportRejectsPartialValues(t *testing.T) {
	v := completeValues()
	v.FastingSugar = nil
	_, err := NewReport(CreateParams{Values: v})
	assert.ErrorIs(t, err, ErrIncomplete)

	v = completeValues()
	v.BMI = nil
	_, err = NewReport(CreateParams{Values: v})
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestOwnerScope(t *testing.T) {
	assert.True(t, Guest.IsGuest())
	assert.True(t, Guest.Matches("anyone"))
	assert.True(t, Owner("a").Matches("a"))
	assert.False(t, Owner("a").Matches("b"))
	assert.False(t, Owner("a").Matches(Guest))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)
	assert.Equal(t, "42", id.String())

	for _, raw := range []string{"", "x", "0", "-3"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}

func TestMarkRecordedQueuesEvent(t *testing.T) {
	r, err := NewReport(CreateParams{Values: completeValues(), Owner: "u-1"})
	require.NoError(t, err)
	r.ID = 7
	r.MarkRecorded()

	assert.Equal(t, 1, r.Pending())
	evs := r.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, "report.recorded", evs[0].EventName())
	assert.Equal(t, "7", evs[0].AggregateID())
	assert.Empty(t, r.Drain())
}
