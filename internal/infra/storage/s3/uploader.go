package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultRegion    = "us-east-1"
	defaultURLExpiry = 24 * time.Hour
)

var (
	ErrEndpointRequired = errors.New("s3: endpoint is required")
	ErrBucketRequired   = errors.New("s3: bucket is required")
	ErrKeyRequired      = errors.New("s3: object key is required")
)

type Config struct {
	Endpoint string
	// PublicEndpoint is the address clients download from when it differs
	// from the one the service reaches, e.g. behind docker networking.
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	Region         string
	URLExpiry      time.Duration
}

// Client stores export archives in an S3-compatible bucket and hands out
// presigned download links. The bucket stays private.
type Client struct {
	bucket    string
	expiry    time.Duration
	client    *minio.Client
	presigner *minio.Client
	logger    *slog.Logger

	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, ErrBucketRequired
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	creds := credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), "")

	client, err := minio.New(hostOf(endpoint), &minio.Options{Creds: creds, Secure: cfg.UseSSL, Region: region})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	presigner := client
	if public := strings.TrimSpace(cfg.PublicEndpoint); public != "" {
		secure := cfg.UseSSL
		if parsed, err := url.Parse(public); err == nil && parsed.Scheme != "" {
			secure = parsed.Scheme == "https"
		}
		presigner, err = minio.New(hostOf(public), &minio.Options{Creds: creds, Secure: secure, Region: region})
		if err != nil {
			return nil, fmt.Errorf("s3: create public client: %w", err)
		}
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}
	return &Client{
		bucket:    bucket,
		expiry:    expiry,
		client:    client,
		presigner: presigner,
		logger:    logger,
	}, nil
}

// Upload stores the object and returns a presigned GET URL for it.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if body == nil {
		return "", errors.New("s3: body is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrKeyRequired
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := c.client.PutObject(ctx, c.bucket, key, body, -1, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", fileName(key)),
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}
	link, err := c.presigner.PresignedGetObject(ctx, c.bucket, key, c.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("s3: presign: %w", err)
	}
	if c.logger != nil {
		c.logger.Info("s3 upload completed", "bucket", c.bucket, "key", key, "size", info.Size)
	}
	return link.String(), nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketInitOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.bucket)
		if err != nil {
			c.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return c.bucketInitErr
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

func fileName(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
