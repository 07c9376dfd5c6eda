package storage

import (
	"testing"

	"github.com/andresuchdata/pomonitor/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	endpoint, secure := normalizeEndpoint("https://s3.example.com/", false)
	assert.Equal(t, "s3.example.com", endpoint)
	assert.True(t, secure)

	endpoint, secure = normalizeEndpoint("http://minio:9000", true)
	assert.Equal(t, "minio:9000", endpoint)
	assert.False(t, secure)

	endpoint, secure = normalizeEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", endpoint)
	assert.True(t, secure)
}

func TestNewMinioClient_RequiresConfig(t *testing.T) {
	_, err := NewMinioClient(config.StorageConfig{})
	assert.Error(t, err)

	_, err = NewMinioClient(config.StorageConfig{Endpoint: "minio:9000", Bucket: "reports"})
	assert.Error(t, err)

	client, err := NewMinioClient(config.StorageConfig{
		Endpoint:  "http://minio:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "reports",
	})
	require.NoError(t, err)
	assert.Equal(t, "reports", client.bucket)
}
