package reports

import (
	"context"
	"log/slog"

	"healthtrack/internal/app/dto"
	"healthtrack/internal/app/queries"
	domainreports "healthtrack/internal/domain/reports"
)

const listReportsKey = "reports.list"

type ListReportsQuery struct {
	Owner domainreports.Owner
}

func (q ListReportsQuery) Key() string { return listReportsKey }

type ListReportsHandler struct {
	Reports domainreports.Repository
	Logger  *slog.Logger
}

func (h *ListReportsHandler) Handle(ctx context.Context, q ListReportsQuery) (dto.ReportCollection, error) {
	if h.Reports == nil {
		return dto.ReportCollection{}, ErrRepositoryRequired
	}
	items, err := h.Reports.List(ctx, q.Owner)
	if err != nil {
		return dto.ReportCollection{}, err
	}
	if h.Logger != nil {
		h.Logger.Debug("reports listed", "owner", q.Owner, "count", len(items))
	}
	return dto.MapReportCollection(items), nil
}

var _ queries.Handler[ListReportsQuery, dto.ReportCollection] = (*ListReportsHandler)(nil)
