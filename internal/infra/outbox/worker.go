package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"healthtrack/internal/domain/shared/events"
)

const (
	defaultInterval = 500 * time.Millisecond
	defaultRetry    = 5 * time.Second
	defaultSource   = "app://healthtrack"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker drains the outbox queue into the producer as CloudEvents. It wakes
// on every Interval tick and, when the queue supports it, right after a
// command stored new events.
type Worker struct {
	Queue       Queue
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// cloudEvent is the structured-mode CloudEvents 1.0 envelope.
type cloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Queue == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	var wake <-chan struct{}
	if wk, ok := w.Queue.(Waker); ok {
		wake = wk.Wake()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-wake:
		}
		if err := w.Drain(ctx); err != nil {
			return err
		}
	}
}

// Drain publishes due entries until the queue is empty or a publish fails.
// A failed entry is rescheduled and left for a later pass.
func (w *Worker) Drain(ctx context.Context) error {
	for {
		doc, err := w.Queue.Claim(ctx, w.workerID())
		if err != nil || doc == nil {
			return err
		}
		topic := w.Topic(doc.Name)
		if err := w.publish(ctx, topic, doc); err != nil {
			w.warn("outbox publish failed", doc, "attempts", doc.Attempts+1, "error", err)
			return w.Queue.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		}
		if err := w.Queue.MarkSent(ctx, doc.ID); err != nil {
			return err
		}
		if w.Logger != nil {
			w.Logger.Debug("outbox event published", "event_id", doc.ID, "event", doc.Name, "topic", topic)
		}
	}
}

func (w *Worker) publish(ctx context.Context, topic string, doc *EventDocument) error {
	payload, err := w.envelope(doc)
	if err != nil {
		return err
	}
	headers := make(map[string]string, len(doc.Headers)+1)
	for k, v := range doc.Headers {
		headers[k] = v
	}
	headers["content-type"] = "application/cloudevents+json"
	return w.Producer.Publish(ctx, topic, doc.Aggregate, payload, headers)
}

func (w *Worker) envelope(doc *EventDocument) ([]byte, error) {
	if !json.Valid(doc.Payload) {
		return nil, fmt.Errorf("outbox: event %s has invalid JSON payload", doc.ID)
	}
	source := w.Source
	if source == "" {
		source = defaultSource
	}
	return json.Marshal(cloudEvent{
		SpecVersion:     "1.0",
		ID:              doc.ID,
		Type:            doc.Name + ".v1",
		Source:          source,
		Subject:         doc.Aggregate,
		Time:            doc.OccurredAt.UTC(),
		DataContentType: "application/json",
		Data:            doc.Payload,
	})
}

// Topic maps an event name such as "report.recorded" to
// "<prefix>report.events.v1".
func (w *Worker) Topic(name string) string {
	return w.TopicPrefix + events.Family(name) + ".events.v1"
}

func (w *Worker) workerID() string {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return w.ID
}

// nextRetry picks the delay for the given number of prior attempts, holding
// at the last configured step.
func (w *Worker) nextRetry(attempts int) time.Time {
	delay := defaultRetry
	if n := len(w.Backoff); n > 0 {
		delay = w.Backoff[min(attempts, n-1)]
	}
	return w.now().Add(delay)
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) warn(msg string, doc *EventDocument, args ...any) {
	if w.Logger != nil {
		w.Logger.Warn(msg, append([]any{"event_id", doc.ID, "event", doc.Name}, args...)...)
	}
}
