package metrics

var summaryAdvice = map[OverallStatus]string{
	OverallStable:         "All tracked parameters appear within normal ranges. Maintain your current lifestyle and regular check-ups.",
	OverallMildConcern:    "One parameter needs attention. Monitor your health and consider lifestyle adjustments.",
	OverallNeedsAttention: "Multiple parameters are outside the normal range. A detailed check-up and lifestyle review are recommended.",
	OverallHighRisk:       "Several parameters are abnormal. Please consult a doctor for a complete evaluation.",
	OverallDataIssue:      "Some inputs were invalid. Please correct the highlighted fields and try again.",
}

// Rollup derives the overall summary from a set of classifications. It
// returns nil when there is nothing to summarize. Any failed metric yields
// Data Issue regardless of the others; otherwise the abnormal count decides.
func Rollup(items []Classification) *Summary {
	if len(items) == 0 {
		return nil
	}
	abnormal := 0
	for _, c := range items {
		if c.Status.Failed() {
			return newSummary(OverallDataIssue)
		}
		if c.Status.Abnormal() {
			abnormal++
		}
	}
	switch {
	case abnormal == 0:
		return newSummary(OverallStable)
	case abnormal == 1:
		return newSummary(OverallMildConcern)
	case abnormal <= 3:
		return newSummary(OverallNeedsAttention)
	default:
		return newSummary(OverallHighRisk)
	}
}

func newSummary(status OverallStatus) *Summary {
	return &Summary{Status: status, Advice: summaryAdvice[status]}
}
