package reports

import (
	"context"
	"log/slog"
	"time"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/outbox"
	domainreports "healthtrack/internal/domain/reports"
)

const (
	deleteReportKey = "reports.delete"
	clearReportsKey = "reports.clear"
)

type DeleteReportCommand struct {
	ID    domainreports.ID
	Owner domainreports.Owner
}

func (c DeleteReportCommand) Key() string { return deleteReportKey }

func (c DeleteReportCommand) Validate() error {
	if c.ID <= 0 {
		return domainreports.ErrInvalidID
	}
	return nil
}

type DeleteReportResult struct {
	ReportID int64 `json:"report_id"`
}

type DeleteReportHandler struct {
	Reports domainreports.Repository
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *DeleteReportHandler) Handle(ctx context.Context, cmd DeleteReportCommand) (*DeleteReportResult, error) {
	if h.Reports == nil {
		return nil, ErrRepositoryRequired
	}
	if err := h.Reports.Delete(ctx, cmd.ID, cmd.Owner); err != nil {
		return nil, err
	}
	appendEvents(ctx, h.Outbox, h.Encoder, h.Logger, domainreports.ReportDeleted{ReportID: cmd.ID, Owner: cmd.Owner, At: time.Now().UTC()})
	if h.Logger != nil {
		h.Logger.Info("report deleted", "report_id", cmd.ID, "owner", cmd.Owner)
	}
	return &DeleteReportResult{ReportID: int64(cmd.ID)}, nil
}

// ClearReportsCommand removes every report in the owner's scope. For the
// guest scope that is the whole store.
type ClearReportsCommand struct {
	Owner domainreports.Owner
}

func (c ClearReportsCommand) Key() string { return clearReportsKey }

type ClearReportsResult struct {
	Removed int64 `json:"removed"`
}

type ClearReportsHandler struct {
	Reports domainreports.Repository
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ClearReportsHandler) Handle(ctx context.Context, cmd ClearReportsCommand) (*ClearReportsResult, error) {
	if h.Reports == nil {
		return nil, ErrRepositoryRequired
	}
	removed, err := h.Reports.DeleteAll(ctx, cmd.Owner)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		appendEvents(ctx, h.Outbox, h.Encoder, h.Logger, domainreports.ReportsCleared{Owner: cmd.Owner, Removed: removed, At: time.Now().UTC()})
	}
	if h.Logger != nil {
		h.Logger.Info("reports cleared", "owner", cmd.Owner, "guest_scope", cmd.Owner.IsGuest(), "removed", removed)
	}
	return &ClearReportsResult{Removed: removed}, nil
}

var (
	_ commands.Handler[DeleteReportCommand, *DeleteReportResult] = (*DeleteReportHandler)(nil)
	_ commands.Handler[ClearReportsCommand, *ClearReportsResult] = (*ClearReportsHandler)(nil)
)
