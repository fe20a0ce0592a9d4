package dto

import (
	"time"

	"healthtrack/internal/domain/reports"
)

// TimestampLayout is how report creation times are shown and exported.
const TimestampLayout = "2006-01-02 15:04:05"

type Report struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Hemoglobin   float64   `json:"hb"`
	FastingSugar float64   `json:"sugar"`
	Systolic     int       `json:"bp_sys"`
	Diastolic    int       `json:"bp_dia"`
	Cholesterol  float64   `json:"chol"`
	HeightCM     float64   `json:"height_cm"`
	WeightKG     float64   `json:"weight_kg"`
	BMI          float64   `json:"bmi"`
	Owner        string    `json:"owner,omitempty"`
}

// ChartSeries feeds the history charts: one point per report, in order.
type ChartSeries struct {
	Labels       []string  `json:"labels"`
	FastingSugar []float64 `json:"sugar"`
	BMI          []float64 `json:"bmi"`
}

type ReportCollection struct {
	Items []Report    `json:"items"`
	Chart ChartSeries `json:"chart"`
}

func MapReport(r *reports.Report) Report {
	if r == nil {
		return Report{}
	}
	return Report{
		ID:           int64(r.ID),
		CreatedAt:    r.CreatedAt,
		Hemoglobin:   r.Hemoglobin,
		FastingSugar: r.FastingSugar,
		Systolic:     r.Systolic,
		Diastolic:    r.Diastolic,
		Cholesterol:  r.Cholesterol,
		HeightCM:     r.HeightCM,
		WeightKG:     r.WeightKG,
		BMI:          r.BMI,
		Owner:        string(r.Owner),
	}
}

func MapReportCollection(items []*reports.Report) ReportCollection {
	out := ReportCollection{
		Items: make([]Report, 0, len(items)),
		Chart: ChartSeries{
			Labels:       make([]string, 0, len(items)),
			FastingSugar: make([]float64, 0, len(items)),
			BMI:          make([]float64, 0, len(items)),
		},
	}
	for _, r := range items {
		out.Items = append(out.Items, MapReport(r))
		out.Chart.Labels = append(out.Chart.Labels, r.CreatedAt.Format(TimestampLayout))
		out.Chart.FastingSugar = append(out.Chart.FastingSugar, r.FastingSugar)
		out.Chart.BMI = append(out.Chart.BMI, r.BMI)
	}
	return out
}
