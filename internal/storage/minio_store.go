package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/weberyanglalala/gpt-chart-express-server/internal/config"
)

// MinioStore stores objects through the minio client, which speaks the S3
// API and works against R2, S3 and MinIO alike.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger log.Logger
}

// NewMinioStore creates a store for cfg. The bucket is expected to exist;
// no bucket calls are made.
func NewMinioStore(cfg config.StorageConfig, logger log.Logger) (*MinioStore, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	host, secure, err := ParseEndpoint(cfg.EndpointURL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &MinioStore{
		client: client,
		bucket: cfg.BucketName,
		logger: logger,
	}, nil
}

// PutObject uploads data under key with the given content type
func (m *MinioStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	options := minio.PutObjectOptions{
		ContentType: contentType,
	}

	info, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), options)
	if err != nil {
		level.Warn(m.logger).Log("msg", "put object failed", "bucket", m.bucket, "key", key, "err", err)
		return "", err
	}

	level.Debug(m.logger).Log("msg", "stored object", "bucket", m.bucket, "key", info.Key,
		"size", humanize.Bytes(uint64(len(data))), "etag", info.ETag)
	return key, nil
}

// ParseEndpoint splits an endpoint URL into the host[:port] the minio client
// expects and whether TLS is used. A bare host defaults to TLS.
func ParseEndpoint(endpoint string) (string, bool, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false, fmt.Errorf("storage endpoint is empty")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid storage endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid storage endpoint %q: missing host", endpoint)
	}
	if u.Path != "" && u.Path != "/" {
		return "", false, fmt.Errorf("invalid storage endpoint %q: path not allowed", endpoint)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("invalid storage endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
}
