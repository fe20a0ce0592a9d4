package reports

import (
	"context"

	"healthtrack/internal/app/dto"
	"healthtrack/internal/app/queries"
	"healthtrack/internal/domain/metrics"
)

const evaluateMetricsKey = "metrics.evaluate"

// EvaluateMetricsQuery classifies a submission without storing anything.
type EvaluateMetricsQuery struct {
	Input metrics.Input
}

func (q EvaluateMetricsQuery) Key() string { return evaluateMetricsKey }

type EvaluateMetricsHandler struct{}

func (EvaluateMetricsHandler) Handle(_ context.Context, q EvaluateMetricsQuery) (dto.Evaluation, error) {
	return dto.MapEvaluation(metrics.Evaluate(q.Input)), nil
}

var _ queries.Handler[EvaluateMetricsQuery, dto.Evaluation] = EvaluateMetricsHandler{}
