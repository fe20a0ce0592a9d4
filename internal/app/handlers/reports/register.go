package reports

import (
	"context"
	"log/slog"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/outbox"
	"healthtrack/internal/app/queries"
	domainreports "healthtrack/internal/domain/reports"
	"healthtrack/internal/domain/shared/events"
)

// Dependencies are shared by every report handler. Outbox and Uploader are
// optional.
type Dependencies struct {
	Reports  domainreports.Repository
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Uploader Uploader
	Logger   *slog.Logger
}

// Register attaches every report command and query handler to the buses.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, deps Dependencies) {
	box := deps.Outbox
	commands.RegisterHandler(cmdBus, submitMetricsKey, &SubmitMetricsHandler{
		Reports: deps.Reports,
		Outbox:  box,
		Encoder: deps.Encoder,
		Logger:  deps.Logger,
	})
	commands.RegisterHandler(cmdBus, deleteReportKey, &DeleteReportHandler{
		Reports: deps.Reports,
		Outbox:  box,
		Encoder: deps.Encoder,
		Logger:  deps.Logger,
	})
	commands.RegisterHandler(cmdBus, clearReportsKey, &ClearReportsHandler{
		Reports: deps.Reports,
		Outbox:  box,
		Encoder: deps.Encoder,
		Logger:  deps.Logger,
	})
	commands.RegisterHandler(cmdBus, archiveExportKey, &ArchiveExportHandler{
		Reports:  deps.Reports,
		Uploader: deps.Uploader,
		Logger:   deps.Logger,
	})

	queries.RegisterHandler(queryBus, evaluateMetricsKey, EvaluateMetricsHandler{})
	queries.RegisterHandler(queryBus, listReportsKey, &ListReportsHandler{
		Reports: deps.Reports,
		Logger:  deps.Logger,
	})
	queries.RegisterHandler(queryBus, exportReportsKey, &ExportReportsHandler{
		Reports: deps.Reports,
	})
}

// appendEvents adds evs to the outbox after the store write has committed.
// The command has already taken effect at that point, so a failed append is
// logged and not returned.
func appendEvents(ctx context.Context, box outbox.Outbox, enc outbox.EventEncoder, logger *slog.Logger, evs ...events.DomainEvent) {
	stored, err := outbox.Append(ctx, box, enc, evs...)
	if err != nil && logger != nil {
		logger.Warn("outbox append failed", "events", len(evs), "stored", stored, "error", err)
	}
}
