package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// Envelope is the CloudEvents shape the outbox worker publishes.
type Envelope struct {
	SpecVersion string          `json:"specversion"`
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	Subject     string          `json:"subject"`
	Time        time.Time       `json:"time"`
	Data        json.RawMessage `json:"data"`
}

func DecodeEnvelope(msg *sarama.ConsumerMessage) (Envelope, error) {
	var env Envelope
	if msg == nil {
		return env, fmt.Errorf("kafka: nil message")
	}
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return env, fmt.Errorf("kafka: decode envelope: %w", err)
	}
	return env, nil
}

// Header returns the value of the named record header, if present.
func Header(msg *sarama.ConsumerMessage, key string) string {
	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}
