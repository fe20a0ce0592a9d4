package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	reportsapp "healthtrack/internal/app/handlers/reports"
	"healthtrack/internal/domain/metrics"
)

func newEvaluateCommand() *cobra.Command {
	var in metrics.Input
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Classify one set of measurements and print the result as JSON",
		Long: `Classify one set of measurements and print the result as JSON.

Nothing is stored. Omitted or malformed values are reported as errors for
their metric, exactly as the web form does.`,
		Example: `  healthtrack evaluate --hb 13.5 --sugar 92 --bp-sys 118 --bp-dia 76 \
    --chol 185 --height 172 --weight 68`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := reportsapp.EvaluateMetricsHandler{}.Handle(cmd.Context(), reportsapp.EvaluateMetricsQuery{Input: in})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Hemoglobin, "hb", "", "hemoglobin, g/dL")
	f.StringVar(&in.FastingSugar, "sugar", "", "fasting blood sugar, mg/dL")
	f.StringVar(&in.Systolic, "bp-sys", "", "systolic blood pressure, mmHg")
	f.StringVar(&in.Diastolic, "bp-dia", "", "diastolic blood pressure, mmHg")
	f.StringVar(&in.Cholesterol, "chol", "", "total cholesterol, mg/dL")
	f.StringVar(&in.HeightCM, "height", "", "height, cm")
	f.StringVar(&in.WeightKG, "weight", "", "weight, kg")
	return cmd
}
