package dto

import "healthtrack/internal/domain/metrics"

type MetricResult struct {
	Metric  string `json:"metric"`
	Status  string `json:"status"`
	Label   string `json:"label"`
	Advice  string `json:"advice"`
	Invalid bool   `json:"invalid,omitempty"`
}

type OverallSummary struct {
	Status string `json:"status"`
	Advice string `json:"advice"`
}

type MetricValues struct {
	Hemoglobin   *float64 `json:"hb"`
	FastingSugar *float64 `json:"sugar"`
	Systolic     *int     `json:"bp_sys"`
	Diastolic    *int     `json:"bp_dia"`
	Cholesterol  *float64 `json:"chol"`
	HeightCM     *float64 `json:"height_cm"`
	WeightKG     *float64 `json:"weight_kg"`
	BMI          *float64 `json:"bmi"`
}

type Evaluation struct {
	Results []MetricResult  `json:"results"`
	Overall *OverallSummary `json:"overall,omitempty"`
	Values  MetricValues    `json:"values"`
}

func MapEvaluation(res metrics.Result) Evaluation {
	out := Evaluation{
		Results: make([]MetricResult, 0, len(res.Classifications)),
		Values: MetricValues{
			Hemoglobin:   res.Values.Hemoglobin,
			FastingSugar: res.Values.FastingSugar,
			Systolic:     res.Values.Systolic,
			Diastolic:    res.Values.Diastolic,
			Cholesterol:  res.Values.Cholesterol,
			HeightCM:     res.Values.HeightCM,
			WeightKG:     res.Values.WeightKG,
			BMI:          res.Values.BMI,
		},
	}
	for _, c := range res.Classifications {
		out.Results = append(out.Results, MetricResult{
			Metric:  string(c.Metric),
			Status:  string(c.Status),
			Label:   c.Label,
			Advice:  c.Advice,
			Invalid: c.Status.Failed(),
		})
	}
	if res.Summary != nil {
		out.Overall = &OverallSummary{Status: string(res.Summary.Status), Advice: res.Summary.Advice}
	}
	return out
}
