package metrics

// ComputeBMI returns weight / height², with height given in centimetres and
// weight in kilograms. Only a zero height is an error; other values,
// including zero or negative ones, are computed as given.
func ComputeBMI(heightCM, weightKG float64) (float64, error) {
	if heightCM == 0 {
		return 0, ErrZeroHeight
	}
	heightM := heightCM / 100.0
	return weightKG / (heightM * heightM), nil
}
