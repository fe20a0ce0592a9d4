package reports

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/dto"
	"healthtrack/internal/app/outbox"
	"healthtrack/internal/domain/metrics"
	domainreports "healthtrack/internal/domain/reports"
)

const submitMetricsKey = "reports.submit"

// SubmitMetricsCommand evaluates a submission and stores it when every
// metric is valid.
type SubmitMetricsCommand struct {
	Owner      domainreports.Owner
	Input      metrics.Input
	RequestKey string
}

func (c SubmitMetricsCommand) Key() string { return submitMetricsKey }

func (c SubmitMetricsCommand) IdempotencyKey() string { return c.RequestKey }

func (c SubmitMetricsCommand) ResultPrototype() any { return &SubmitMetricsResult{} }

type SubmitMetricsResult struct {
	Evaluation dto.Evaluation `json:"evaluation"`
	Saved      bool           `json:"saved"`
	ReportID   int64          `json:"report_id,omitempty"`
}

type SubmitMetricsHandler struct {
	Reports domainreports.Repository
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
	Logger  *slog.Logger
}

var ErrRepositoryRequired = errors.New("reports: repository required")

func (h *SubmitMetricsHandler) Handle(ctx context.Context, cmd SubmitMetricsCommand) (*SubmitMetricsResult, error) {
	if h.Reports == nil {
		return nil, ErrRepositoryRequired
	}
	res := metrics.Evaluate(cmd.Input)
	out := &SubmitMetricsResult{Evaluation: dto.MapEvaluation(res)}

	report, err := domainreports.NewReport(domainreports.CreateParams{
		Values:    res.Values,
		Owner:     cmd.Owner,
		CreatedAt: h.now(),
	})
	if errors.Is(err, domainreports.ErrIncomplete) {
		if h.Logger != nil {
			h.Logger.Debug("submission not stored", "owner", cmd.Owner, "overall", overallStatus(res))
		}
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	if err := h.Reports.Insert(ctx, report); err != nil {
		return nil, err
	}
	report.MarkRecorded()
	appendEvents(ctx, h.Outbox, h.Encoder, h.logger(report.ID), report.Drain()...)

	out.Saved = true
	out.ReportID = int64(report.ID)
	if h.Logger != nil {
		h.Logger.Info("report stored", "report_id", report.ID, "owner", report.Owner, "overall", overallStatus(res))
	}
	return out, nil
}

func (h *SubmitMetricsHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *SubmitMetricsHandler) logger(id domainreports.ID) *slog.Logger {
	if h.Logger == nil {
		return nil
	}
	return h.Logger.With("report_id", id)
}

func overallStatus(res metrics.Result) string {
	if res.Summary == nil {
		return ""
	}
	return string(res.Summary.Status)
}

var _ commands.Handler[SubmitMetricsCommand, *SubmitMetricsResult] = (*SubmitMetricsHandler)(nil)
