package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"

	domainreports "healthtrack/internal/domain/reports"
	"healthtrack/internal/infra/broker/kafka"
	"healthtrack/internal/infra/config"
	mongostore "healthtrack/internal/infra/db/mongo"
	"healthtrack/internal/infra/inbox"
	"healthtrack/internal/infra/obs"
	infraoutbox "healthtrack/internal/infra/outbox"
)

func newEventsCommand() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail report events from Kafka and log them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.KafkaEnabled() {
				return errors.New("KAFKA_BROKERS is not set")
			}
			if group != "" {
				cfg.KafkaGroupID = group
			}
			logger := obs.NewLogger(cfg.Env, os.Stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dedup, closeDedup, err := openInbox(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDedup()

			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, eventLogger(logger, dedup), logger)
			if err != nil {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			defer consumer.Close()

			topic := reportTopic(cfg.KafkaTopicPrefix)
			logger.Info("consuming report events", "topic", topic, "group", cfg.KafkaGroupID)
			if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "consumer group, overrides KAFKA_GROUP_ID")
	return cmd
}

// reportTopic is where the outbox worker publishes every report.* event.
func reportTopic(prefix string) string {
	w := infraoutbox.Worker{TopicPrefix: prefix}
	return w.Topic(domainreports.ReportRecorded{}.EventName())
}

// openInbox picks where handled event IDs are remembered. The Mongo driver
// shares dedup state across restarts of the same consumer group.
func openInbox(ctx context.Context, cfg config.Config) (inbox.Deduper, func(), error) {
	if cfg.StoreDriver != config.StoreMongo {
		return inbox.NewMemory(0), func() {}, nil
	}
	client, err := mongostore.New(ctx, mongostore.Options{URI: cfg.MongoURI, Database: cfg.MongoDB})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = client.Close(context.Background()) }
	return inbox.NewStore(client.DB, cfg.KafkaGroupID, cfg.IdempotencyTTL), closeFn, nil
}

// eventLogger logs every report event once. Redeliveries, which the outbox
// retry loop can produce, are skipped by event ID.
func eventLogger(logger *slog.Logger, dedup inbox.Deduper) kafka.HandlerFunc {
	return func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		env, err := kafka.DecodeEnvelope(msg)
		if err != nil {
			// undecodable messages are logged and skipped so they do not block the partition
			logger.Warn("skipping malformed event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			return nil
		}
		if dedup != nil && env.ID != "" {
			seen, err := dedup.Seen(ctx, env.ID)
			if err != nil {
				return err
			}
			if seen {
				logger.Debug("duplicate event skipped", "id", env.ID, "offset", msg.Offset)
				return nil
			}
		}
		logger.Info("report event",
			"type", env.Type,
			"id", env.ID,
			"subject", env.Subject,
			"time", env.Time,
			"data", string(env.Data),
		)
		return nil
	}
}
