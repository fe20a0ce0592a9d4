package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{Bucket: "exports"}, nil)
	assert.ErrorIs(t, err, ErrEndpointRequired)

	_, err = NewClient(Config{Endpoint: "localhost:9000"}, nil)
	assert.ErrorIs(t, err, ErrBucketRequired)

	c, err := NewClient(Config{Endpoint: "http://minio:9000", PublicEndpoint: "https://files.example.com", Bucket: "exports"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultURLExpiry, c.expiry)
	assert.NotSame(t, c.client, c.presigner)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "minio:9000", hostOf("http://minio:9000"))
	assert.Equal(t, "minio:9000", hostOf("minio:9000"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a.csv", fileName("exports/guest/a.csv"))
	assert.Equal(t, "a.csv", fileName("a.csv"))
}
