package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"healthtrack/internal/domain/shared/events"
)

const (
	HeaderFamily        = "event-family"
	HeaderSchemaVersion = "schema-version"

	schemaVersion = "1"
)

var ErrUnnamedEvent = errors.New("outbox: event has no name")

// EventRecord is an encoded report event waiting to be published.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	// Flush is called after a command succeeds; stores may use it to wake
	// the publisher.
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder stores the event body as JSON and tags the record with
// its family so the publisher can pick a topic without decoding it.
type JSONEventEncoder struct {
	NewID func() string
	Now   func() time.Time
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	name := ev.EventName()
	if name == "" {
		return EventRecord{}, ErrUnnamedEvent
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", name, err)
	}
	at := ev.OccurredAt()
	if at.IsZero() {
		at = e.now()
	}
	return EventRecord{
		ID:         e.newID(),
		Name:       name,
		Payload:    payload,
		OccurredAt: at.UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{
			HeaderFamily:        events.Family(name),
			HeaderSchemaVersion: schemaVersion,
		},
	}, nil
}

func (e JSONEventEncoder) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e JSONEventEncoder) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Append encodes evs and adds them to box, returning how many were stored.
// Every event is attempted and the failures are joined. A nil box drops the
// events, which is how deployments without a broker run.
func Append(ctx context.Context, box Outbox, encoder EventEncoder, evs ...events.DomainEvent) (int, error) {
	if box == nil {
		return 0, nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	var (
		stored int
		errs   []error
	)
	for _, ev := range evs {
		if ev == nil {
			continue
		}
		rec, err := encoder.Encode(ev)
		if err == nil {
			err = box.Add(ctx, rec)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ev.EventName(), err))
			continue
		}
		stored++
	}
	return stored, errors.Join(errs...)
}
