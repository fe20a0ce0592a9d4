package middleware

import (
	"context"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/queries"
)

// Middleware decorates a bus of type B.
type Middleware[B any] func(next B) B

type (
	CommandMiddleware = Middleware[commands.Bus]
	QueryMiddleware   = Middleware[queries.Bus]
)

// ChainCommands wraps base with mws; the first middleware is the outermost.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	return chain(base, mws)
}

func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	return chain(base, mws)
}

func chain[B any](base B, mws []Middleware[B]) B {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// DispatchFunc lets a plain function serve as a command bus.
type DispatchFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f DispatchFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

// AskFunc lets a plain function serve as a query bus.
type AskFunc func(ctx context.Context, q queries.Query) (any, error)

func (f AskFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

type step[M any] func(ctx context.Context, msg M) (any, error)
