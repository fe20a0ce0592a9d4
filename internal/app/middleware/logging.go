package middleware

import (
	"context"
	"log/slog"
	"time"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/queries"
)

type keyed interface {
	Key() string
}

// Logging records every command with its duration and outcome.
func Logging(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		if logger == nil {
			return next
		}
		return DispatchFunc(logged[commands.Command](logger, "command", next.Dispatch))
	}
}

func QueryLogging(logger *slog.Logger) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		if logger == nil {
			return next
		}
		return AskFunc(logged[queries.Query](logger, "query", next.Ask))
	}
}

// logged runs next and reports the message under kind: failures at warn,
// successes at debug.
func logged[M keyed](logger *slog.Logger, kind string, next step[M]) step[M] {
	return func(ctx context.Context, msg M) (any, error) {
		start := time.Now()
		res, err := next(ctx, msg)
		took := time.Since(start)
		if err != nil {
			logger.Warn(kind+" failed", kind, msg.Key(), "duration", took, "error", err)
			return nil, err
		}
		logger.Debug(kind+" handled", kind, msg.Key(), "duration", took)
		return res, nil
	}
}
