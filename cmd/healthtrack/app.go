package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"healthtrack/internal/app/commands"
	reportsapp "healthtrack/internal/app/handlers/reports"
	"healthtrack/internal/app/middleware"
	appoutbox "healthtrack/internal/app/outbox"
	"healthtrack/internal/app/queries"
	authsvc "healthtrack/internal/app/services/auth"
	domainauth "healthtrack/internal/domain/auth"
	domainreports "healthtrack/internal/domain/reports"
	domainuser "healthtrack/internal/domain/user"
	"healthtrack/internal/infra/broker/kafka"
	"healthtrack/internal/infra/config"
	mongostore "healthtrack/internal/infra/db/mongo"
	ginserver "healthtrack/internal/infra/http/gin"
	"healthtrack/internal/infra/obs"
	infraoutbox "healthtrack/internal/infra/outbox"
	"healthtrack/internal/infra/security"
	"healthtrack/internal/infra/storage/memory"
	"healthtrack/internal/infra/storage/s3"
	"healthtrack/internal/infra/storage/sqlite"
)

type eventQueue interface {
	appoutbox.Outbox
	infraoutbox.Queue
}

type stores struct {
	reports     domainreports.Repository
	users       domainuser.Repository
	sessions    domainauth.SessionStore
	idempotency middleware.IdempotencyStore
	ping        obs.Check
	close       func(context.Context) error
	// durable event queue; nil means events are queued in memory
	outbox eventQueue
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return &stores{
			reports:     memory.NewReportRepository(),
			users:       memory.NewUserRepository(),
			sessions:    memory.NewSessionStore(),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		}, nil
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite store opened", "path", cfg.SQLitePath)
		return &stores{
			reports:     db.Reports(),
			users:       db.Users(),
			sessions:    db.Sessions(),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			ping:        db.Ping,
			close:       func(context.Context) error { return db.Close() },
		}, nil
	case config.StoreMongo:
		client, err := mongostore.New(ctx, mongostore.Options{URI: cfg.MongoURI, Database: cfg.MongoDB})
		if err != nil {
			return nil, err
		}
		logger.Info("mongo store connected", "database", cfg.MongoDB)
		return &stores{
			reports:     mongostore.NewReportRepository(client.DB),
			users:       mongostore.NewUserRepository(client.DB),
			sessions:    mongostore.NewSessionStore(client.DB),
			idempotency: mongostore.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL),
			outbox:      mongostore.NewOutboxStore(client.DB),
			ping:        client.Ping,
			close:       client.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

type application struct {
	cfg      config.Config
	logger   *slog.Logger
	commands commands.Bus
	queries  queries.Bus
	auth     *authsvc.Service
	worker   *infraoutbox.Worker
	checks   map[string]obs.Check
	closers  []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app := &application{cfg: cfg, logger: logger, checks: map[string]obs.Check{}}
	if st.close != nil {
		app.closers = append(app.closers, st.close)
	}
	if st.ping != nil {
		app.checks["store"] = st.ping
	}

	var box eventQueue
	if cfg.KafkaEnabled() {
		box = st.outbox
		if box == nil {
			box = memory.NewOutbox()
		}
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, "healthtrack")
		if err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
		app.worker = &infraoutbox.Worker{
			Queue:       box,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
	}

	var uploader reportsapp.Uploader
	if cfg.S3Enabled() {
		client, err := s3.NewClient(s3.Config{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		uploader = client
	}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	deps := reportsapp.Dependencies{
		Reports:  st.reports,
		Encoder:  appoutbox.JSONEventEncoder{},
		Uploader: uploader,
		Logger:   logger,
	}
	if box != nil {
		deps.Outbox = box
	}
	reportsapp.Register(commandBus, queryBus, deps)
	if logger != nil {
		logger.Debug("bus handlers registered", "commands", commandBus.Keys(), "queries", queryBus.Keys())
	}

	cmdMiddleware := []middleware.CommandMiddleware{
		middleware.Logging(logger),
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(st.idempotency, middleware.IdempotencyOptions{
			TTL:       cfg.IdempotencyTTL,
			Sentinels: []error{
				domainreports.ErrInvalidID,
				domainreports.ErrNotFound,
				reportsapp.ErrRepositoryRequired,
			},
		}),
	}
	if box != nil {
		cmdMiddleware = append(cmdMiddleware, middleware.OutboxFlush(box, logger))
	}
	app.commands = middleware.ChainCommands(commandBus, cmdMiddleware...)
	app.queries = middleware.ChainQueries(queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidator{}),
	)

	app.auth = &authsvc.Service{
		Users:      st.users,
		Sessions:   st.sessions,
		Passwords:  security.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	return app, nil
}

func (a *application) handlers() ginserver.Handlers {
	cookie := ginserver.SessionCookie{Secure: !a.cfg.DevMode(), TTL: a.cfg.SessionTTL}
	return ginserver.Handlers{
		Reports: ginserver.ReportHandler{Commands: a.commands, Queries: a.queries, Logger: a.logger},
		Web: ginserver.WebHandler{
			Commands: a.commands,
			Queries:  a.queries,
			Auth:     a.auth,
			Cookie:   cookie,
			Logger:   a.logger,
		},
		Auth:           ginserver.AuthHandler{Service: a.auth, Cookie: cookie, Logger: a.logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: a.auth, Logger: a.logger}.Handle,
	}
}

// Close releases store and broker connections in reverse order of opening.
func (a *application) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
