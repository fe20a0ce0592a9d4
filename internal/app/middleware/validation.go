package middleware

import (
	"context"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/queries"
)

type Validator interface {
	Validate(ctx context.Context, message any) error
}

// SelfValidating is implemented by messages that can check their own fields.
type SelfValidating interface {
	Validate() error
}

// SelfValidator delegates to the message's own Validate method when it has one.
type SelfValidator struct{}

func (SelfValidator) Validate(_ context.Context, message any) error {
	if v, ok := message.(SelfValidating); ok {
		return v.Validate()
	}
	return nil
}

func Validation(v Validator) CommandMiddleware {
	mustValidator(v)
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(validated[commands.Command](v, next.Dispatch))
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	mustValidator(v)
	return func(next queries.Bus) queries.Bus {
		return AskFunc(validated[queries.Query](v, next.Ask))
	}
}

func validated[M any](v Validator, next step[M]) step[M] {
	return func(ctx context.Context, msg M) (any, error) {
		if err := v.Validate(ctx, msg); err != nil {
			return nil, err
		}
		return next(ctx, msg)
	}
}

func mustValidator(v Validator) {
	if v == nil {
		panic("middleware: validator required")
	}
}
