package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"time"

	"healthtrack/internal/app/commands"
)

// IdempotentCommand is implemented by commands that may be retried by the
// client with the same key, e.g. a resubmitted form.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // pointer to the handler's result type
}

// IdempotencyRecord is the stored outcome of one keyed command. Error holds
// the handler's error text when it failed; Kind names the sentinel it
// matched, if any.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	Kind       string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// IdempotencyOptions tunes Idempotency. A zero TTL keeps records forever.
// Replayed failures satisfy errors.Is for the Sentinels they matched when
// first returned.
type IdempotencyOptions struct {
	Codec     ResultCodec
	TTL       time.Duration
	Now       func() time.Time
	Sentinels []error
}

// Idempotency replays the stored outcome of a command whose key was seen
// before, so the handler runs at most once per key. Concurrent commands with
// the same key are serialized within the process.
func Idempotency(store IdempotencyStore, opts IdempotencyOptions) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	g := &idempotencyGuard{store: store, opts: opts, locks: newKeyLocks()}
	if g.opts.Codec == nil {
		g.opts.Codec = JSONResultCodec{}
	}
	if g.opts.Now == nil {
		g.opts.Now = time.Now
	}
	return func(next commands.Bus) commands.Bus {
		return DispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			return g.run(ctx, idCmd, next)
		})
	}
}

type idempotencyGuard struct {
	store IdempotencyStore
	opts  IdempotencyOptions
	locks *keyLocks
}

func (g *idempotencyGuard) run(ctx context.Context, cmd IdempotentCommand, next commands.Bus) (any, error) {
	key := cmd.Key() + ":" + cmd.IdempotencyKey()
	unlock := g.locks.lock(key)
	defer unlock()

	rec, found, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if found && !g.expired(rec) {
		return g.replay(rec, cmd)
	}
	result, err := next.Dispatch(ctx, cmd)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if saveErr := g.remember(ctx, key, result, err); saveErr != nil {
		return nil, errors.Join(err, saveErr)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *idempotencyGuard) expired(rec IdempotencyRecord) bool {
	return g.opts.TTL > 0 && g.opts.Now().Sub(rec.OccurredAt) > g.opts.TTL
}

func (g *idempotencyGuard) replay(rec IdempotencyRecord, cmd IdempotentCommand) (any, error) {
	if rec.Error != "" {
		return nil, &replayedError{msg: rec.Error, kind: g.sentinel(rec.Kind)}
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) > 0 {
		if err := g.opts.Codec.Decode(rec.Payload, proto); err != nil {
			return nil, err
		}
	}
	if rv := reflect.ValueOf(proto); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, errMissingPrototype
	}
	return proto, nil
}

func (g *idempotencyGuard) remember(ctx context.Context, key string, result any, handlerErr error) error {
	rec := IdempotencyRecord{Key: key, OccurredAt: g.opts.Now().UTC()}
	switch {
	case handlerErr != nil:
		rec.Error = handlerErr.Error()
		for _, s := range g.opts.Sentinels {
			if errors.Is(handlerErr, s) {
				rec.Kind = s.Error()
				break
			}
		}
	case result != nil:
		payload, err := g.opts.Codec.Encode(result)
		if err != nil {
			return err
		}
		rec.Payload = payload
	}
	return g.store.Save(ctx, rec)
}

func (g *idempotencyGuard) sentinel(kind string) error {
	if kind == "" {
		return nil
	}
	for _, s := range g.opts.Sentinels {
		if s.Error() == kind {
			return s
		}
	}
	return nil
}

// replayedError repeats a stored failure.
type replayedError struct {
	msg  string
	kind error
}

func (e *replayedError) Error() string { return e.msg }

func (e *replayedError) Unwrap() error { return e.kind }

// keyLocks hands out one mutex per key and forgets it once nobody holds it.
type keyLocks struct {
	mu   sync.Mutex
	held map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{held: make(map[string]*keyLock)}
}

func (l *keyLocks) lock(key string) (unlock func()) {
	l.mu.Lock()
	kl, ok := l.held[key]
	if !ok {
		kl = &keyLock{}
		l.held[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.Lock()
	return func() {
		kl.Unlock()
		l.mu.Lock()
		if kl.refs--; kl.refs == 0 {
			delete(l.held, key)
		}
		l.mu.Unlock()
	}
}
