package metrics

// Metric names one of the tracked health measurements.
type Metric string

const (
	Hemoglobin    Metric = "Hemoglobin"
	FastingSugar  Metric = "Fasting Sugar"
	BloodPressure Metric = "Blood Pressure"
	Cholesterol   Metric = "Cholesterol"
	BMI           Metric = "BMI"
)

// Metrics lists every tracked metric in evaluation order.
var Metrics = []Metric{Hemoglobin, FastingSugar, BloodPressure, Cholesterol, BMI}

// Status is the classification outcome for a single metric.
type Status string

const (
	StatusLow         Status = "Low"
	StatusNormal      Status = "Normal"
	StatusHigh        Status = "High"
	StatusBorderline  Status = "Borderline"
	StatusUnderweight Status = "Underweight"
	StatusOverweight  Status = "Overweight"
	StatusError       Status = "Error"
)

// Abnormal reports whether the status counts towards the overall risk rollup.
func (s Status) Abnormal() bool {
	switch s {
	case StatusLow, StatusHigh, StatusBorderline, StatusUnderweight, StatusOverweight:
		return true
	default:
		return false
	}
}

// Failed reports whether the metric could not be evaluated.
func (s Status) Failed() bool {
	return s == StatusError
}

// Classification is the evaluated outcome for one metric.
type Classification struct {
	Metric Metric
	Status Status
	// Label is what gets displayed; it differs from Status only for BMI,
	// where it carries the computed value, e.g. "24.2 (Normal)".
	Label  string
	Advice string
}

// OverallStatus is the aggregate risk label of an evaluation.
type OverallStatus string

const (
	OverallStable         OverallStatus = "Stable / Normal"
	OverallMildConcern    OverallStatus = "Mild Concern"
	OverallNeedsAttention OverallStatus = "Needs Attention"
	OverallHighRisk       OverallStatus = "High Risk"
	OverallDataIssue      OverallStatus = "Data Issue"
)

// Summary is the overall rollup of a set of classifications.
type Summary struct {
	Status OverallStatus
	Advice string
}
