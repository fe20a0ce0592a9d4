package metrics

import "fmt"

// Range is a reference interval. Values strictly below Low or strictly above
// High fall outside it; the bounds themselves are in range.
type Range struct {
	Low  float64
	High float64
}

var (
	HemoglobinRange   = Range{Low: 12, High: 16}
	FastingSugarRange = Range{Low: 70, High: 125}
	SystolicRange     = Range{Low: 90, High: 140}
	DiastolicRange    = Range{Low: 60, High: 90}
	BMIRange          = Range{Low: 18.5, High: 24.9}
)

const (
	CholesterolBorderline = 200.0
	CholesterolHigh       = 240.0
)

type advice map[Status]string

var advisories = map[Metric]advice{
	Hemoglobin: {
		StatusLow:    "Hemoglobin appears lower than the normal range. Consult a doctor if symptoms persist.",
		StatusHigh:   "Hemoglobin appears higher than the normal range. A medical check-up is recommended.",
		StatusNormal: "Hemoglobin is within the normal range.",
		StatusError:  "Please enter a valid Hemoglobin value.",
	},
	FastingSugar: {
		StatusLow:    "Low fasting sugar may cause dizziness or weakness.",
		StatusHigh:   "Fasting sugar appears high and may indicate diabetes. Consult a doctor.",
		StatusNormal: "Fasting sugar is within the normal range.",
		StatusError:  "Please enter a valid sugar value.",
	},
	BloodPressure: {
		StatusLow:    "Blood pressure is low. Hydration and rest may help.",
		StatusHigh:   "Blood pressure is high and may pose risks. A medical consultation is recommended.",
		StatusNormal: "Blood pressure is within the normal range.",
		StatusError:  "Please enter valid BP values.",
	},
	Cholesterol: {
		StatusHigh:       "Cholesterol is high and may increase heart disease risk.",
		StatusBorderline: "Cholesterol is borderline high. Healthy diet and lifestyle changes may help.",
		StatusNormal:     "Cholesterol is within a healthy range.",
		StatusError:      "Please enter a valid cholesterol value.",
	},
	BMI: {
		StatusUnderweight: "BMI indicates underweight. A balanced nutritious diet is recommended.",
		StatusOverweight:  "BMI indicates overweight. Regular exercise and diet control are advised.",
		StatusNormal:      "BMI is within normal limits.",
		StatusError:       "Please enter valid height and weight.",
	},
}

func classification(m Metric, s Status) Classification {
	return Classification{Metric: m, Status: s, Label: string(s), Advice: advisories[m][s]}
}

func errorClassification(m Metric) Classification {
	return classification(m, StatusError)
}

func (r Range) classify(v float64) Status {
	switch {
	case v < r.Low:
		return StatusLow
	case v > r.High:
		return StatusHigh
	default:
		return StatusNormal
	}
}

// ClassifyHemoglobin classifies a hemoglobin value in g/dL.
func ClassifyHemoglobin(v float64) Classification {
	return classification(Hemoglobin, HemoglobinRange.classify(v))
}

// ClassifyFastingSugar classifies a fasting glucose value in mg/dL.
func ClassifyFastingSugar(v float64) Classification {
	return classification(FastingSugar, FastingSugarRange.classify(v))
}

// ClassifyBloodPressure classifies a systolic/diastolic pair in mmHg. Low is
// checked before High, so the first matching rule wins.
func ClassifyBloodPressure(systolic, diastolic int) Classification {
	sys, dia := float64(systolic), float64(diastolic)
	switch {
	case sys < SystolicRange.Low || dia < DiastolicRange.Low:
		return classification(BloodPressure, StatusLow)
	case sys > SystolicRange.High || dia > DiastolicRange.High:
		return classification(BloodPressure, StatusHigh)
	default:
		return classification(BloodPressure, StatusNormal)
	}
}

// ClassifyCholesterol classifies total cholesterol in mg/dL.
func ClassifyCholesterol(v float64) Classification {
	switch {
	case v > CholesterolHigh:
		return classification(Cholesterol, StatusHigh)
	case v > CholesterolBorderline:
		return classification(Cholesterol, StatusBorderline)
	default:
		return classification(Cholesterol, StatusNormal)
	}
}

// ClassifyBMI classifies a body mass index. The label carries the value
// rounded to one decimal place.
func ClassifyBMI(bmi float64) Classification {
	status := StatusNormal
	switch {
	case bmi < BMIRange.Low:
		status = StatusUnderweight
	case bmi > BMIRange.High:
		status = StatusOverweight
	}
	c := classification(BMI, status)
	c.Label = fmt.Sprintf("%.1f (%s)", bmi, status)
	return c
}
