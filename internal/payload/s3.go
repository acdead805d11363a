package payload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
)

// S3Config configures the object-store payload backend.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// Validate checks the configuration for the fields the client cannot
// default on its own.
func (c S3Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New("bucket is required")
	}
	return nil
}

// S3Store serves payloads from an S3-compatible object store.
type S3Store struct {
	client *minio.Client
	cfg    S3Config
}

// NewS3Store builds a minio-backed payload store.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	}
	client, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &S3Store{client: client, cfg: cfg}, nil
}

// CheckBucket verifies the configured bucket exists. Called once at startup
// so a misconfigured store fails fast instead of on first worker init.
func (s *S3Store) CheckBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("payload bucket exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("payload bucket missing: %s", s.cfg.Bucket)
	}
	return nil
}

// Fetch downloads the named payload object in full.
func (s *S3Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)

	key := trimName(name)
	if s.cfg.Prefix != "" {
		key = strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + key
	}
	logger.Debug("Fetching payload from object store.", "name", name, "bucket", s.cfg.Bucket, "key", key)

	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payload %q: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload %q: %w", name, err)
	}
	return data, nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
