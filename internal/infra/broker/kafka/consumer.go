package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"
)

// MessageHandler processes one record. Returning an error leaves the offset
// unmarked so the record comes back after the next rebalance.
type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

type HandlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

func (f HandlerFunc) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return f(ctx, msg)
}

// Consumer reads report events as a member of a consumer group.
type Consumer struct {
	group  sarama.ConsumerGroup
	claims claimHandler
}

func NewConsumer(brokers []string, groupID string, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, errors.New("kafka: consumer handler required")
	}
	cfg := baseConfig("healthtrack-" + groupID)
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	c := &Consumer{group: group, claims: claimHandler{handler: handler, logger: logger}}
	go c.logErrors()
	return c, nil
}

// Run consumes topics until ctx is cancelled or the group is closed.
// Consume returns on every rebalance, so it is re-entered in a loop.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		err := c.group.Consume(ctx, topics, c.claims)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		case err != nil:
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

func (c *Consumer) logErrors() {
	for err := range c.group.Errors() {
		if c.claims.logger != nil {
			c.claims.logger.Warn("kafka consumer error", "error", err)
		}
	}
}

type claimHandler struct {
	handler MessageHandler
	logger  *slog.Logger
}

func (claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handler.Handle(ctx, msg); err != nil {
				if h.logger != nil {
					h.logger.Warn("kafka message not handled",
						"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
				}
				continue
			}
			sess.MarkMessage(msg, "")
		}
	}
}
