package middleware

import (
	"context"
	"log/slog"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/outbox"
)

// OutboxFlush wakes the publisher once a command has succeeded. The command's
// writes are already stored at that point, so a flush error is only logged.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil && logger != nil {
				logger.Warn("outbox flush failed", "command", cmd.Key(), "error", err)
			}
			return res, nil
		})
	}
}
