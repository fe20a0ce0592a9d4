package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultConnectTimeout = 10 * time.Second

// Options names the deployment the healthtrack stores live in.
type Options struct {
	URI            string
	Database       string
	AppName        string
	ConnectTimeout time.Duration
}

// Client owns the connection shared by every Mongo-backed store.
type Client struct {
	DB *mongo.Database
}

// New connects and waits for the primary to answer before returning.
func New(ctx context.Context, o Options) (*Client, error) {
	timeout := o.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	if o.AppName == "" {
		o.AppName = "healthtrack"
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := mongo.Connect(ctx, options.Client().
		ApplyURI(o.URI).
		SetAppName(o.AppName).
		SetRetryWrites(true).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := conn.Ping(ctx, readpref.Primary()); err != nil {
		_ = conn.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping %s: %w", o.Database, err)
	}
	return &Client{DB: conn.Database(o.Database)}, nil
}

// Ping is used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}
