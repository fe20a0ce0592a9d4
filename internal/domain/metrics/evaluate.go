package metrics

// Input carries the raw submitted fields. An empty field is treated as
// missing.
type Input struct {
	Hemoglobin   string `json:"hb" form:"hb"`
	FastingSugar string `json:"sugar" form:"sugar"`
	Systolic     string `json:"bp_sys" form:"bp_sys"`
	Diastolic    string `json:"bp_dia" form:"bp_dia"`
	Cholesterol  string `json:"chol" form:"chol"`
	HeightCM     string `json:"height" form:"height"`
	WeightKG     string `json:"weight" form:"weight"`
}

// Values holds the parsed numbers of an evaluation. A nil field means the
// underlying input could not be used.
type Values struct {
	Hemoglobin   *float64
	FastingSugar *float64
	Systolic     *int
	Diastolic    *int
	Cholesterol  *float64
	HeightCM     *float64
	WeightKG     *float64
	BMI          *float64
}

// Complete reports whether every value is present.
func (v Values) Complete() bool {
	return v.Hemoglobin != nil &&
		v.FastingSugar != nil &&
		v.Systolic != nil &&
		v.Diastolic != nil &&
		v.Cholesterol != nil &&
		v.HeightCM != nil &&
		v.WeightKG != nil &&
		v.BMI != nil
}

// Result is the outcome of evaluating one submission.
type Result struct {
	Classifications []Classification
	Summary         *Summary
	Values          Values
}

// Classification returns the outcome for a single metric.
func (r Result) Classification(m Metric) (Classification, bool) {
	for _, c := range r.Classifications {
		if c.Metric == m {
			return c, true
		}
	}
	return Classification{}, false
}

// Evaluate parses and classifies every metric of the input. It never fails:
// a field that cannot be parsed yields an Error classification for its
// metric and leaves the others untouched.
func Evaluate(in Input) Result {
	var values Values
	items := make([]Classification, 0, len(Metrics))

	if hb := ParseDecimal(in.Hemoglobin); hb.Ok() {
		values.Hemoglobin = hb.Ptr()
		items = append(items, ClassifyHemoglobin(hb.Value))
	} else {
		items = append(items, errorClassification(Hemoglobin))
	}

	if sugar := ParseDecimal(in.FastingSugar); sugar.Ok() {
		values.FastingSugar = sugar.Ptr()
		items = append(items, ClassifyFastingSugar(sugar.Value))
	} else {
		items = append(items, errorClassification(FastingSugar))
	}

	sys, dia := ParseInteger(in.Systolic), ParseInteger(in.Diastolic)
	if sys.Ok() && dia.Ok() {
		values.Systolic, values.Diastolic = sys.Ptr(), dia.Ptr()
		items = append(items, ClassifyBloodPressure(sys.Value, dia.Value))
	} else {
		items = append(items, errorClassification(BloodPressure))
	}

	if chol := ParseDecimal(in.Cholesterol); chol.Ok() {
		values.Cholesterol = chol.Ptr()
		items = append(items, ClassifyCholesterol(chol.Value))
	} else {
		items = append(items, errorClassification(Cholesterol))
	}

	height, weight := ParseDecimal(in.HeightCM), ParseDecimal(in.WeightKG)
	bmi := failed[float64](ErrMissing)
	if height.Ok() && weight.Ok() {
		v, err := ComputeBMI(height.Value, weight.Value)
		bmi = Reading[float64]{Value: v, Err: err}
	}
	if bmi.Ok() {
		values.HeightCM, values.WeightKG, values.BMI = height.Ptr(), weight.Ptr(), bmi.Ptr()
		items = append(items, ClassifyBMI(bmi.Value))
	} else {
		items = append(items, errorClassification(BMI))
	}

	return Result{
		Classifications: items,
		Summary:         Rollup(items),
		Values:          values,
	}
}
