package events

import (
	"strings"
	"time"
)

// DomainEvent is a fact about a report scope. Names take the form
// "<family>.<action>", for example "report.deleted".
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Family is the part of an event name before the first dot. A name without
// a dot is its own family.
func Family(name string) string {
	family, _, _ := strings.Cut(name, ".")
	if family == "" {
		return name
	}
	return family
}

// Buffer holds events raised by an aggregate until its store write has
// succeeded. Drain hands each event over once.
type Buffer struct {
	pending []DomainEvent
}

func (b *Buffer) Raise(evs ...DomainEvent) {
	for _, ev := range evs {
		if ev != nil {
			b.pending = append(b.pending, ev)
		}
	}
}

func (b *Buffer) Pending() int { return len(b.pending) }

func (b *Buffer) Drain() []DomainEvent {
	out := b.pending
	b.pending = nil
	return out
}
