package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver uploads reconciliation reports as JSON objects.
type Archiver struct {
	client Client
	bucket string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewArchiver creates an archiver writing to cfg.Bucket under cfg.Prefix.
func NewArchiver(client Client, cfg Config, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
		now:    time.Now,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	a.logger.Info("Created report bucket", zap.String("bucket", a.bucket))
	return nil
}

// Key returns the object key for a report: <prefix>/<kind>/<yyyy>/<mm>/<dd>/<id>.json.
func (a *Archiver) Key(kind, id string) string {
	return path.Join(a.prefix, kind, a.now().UTC().Format("2006/01/02"), id+".json")
}

// Store marshals report and uploads it, returning the object key.
func (a *Archiver) Store(ctx context.Context, kind, id string, report any) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := a.Key(kind, id)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"kind": kind,
			"run":  id,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	a.logger.Debug("Report archived", zap.String("bucket", a.bucket), zap.String("key", key))
	return key, nil
}

// Fetch downloads the report stored under key.
func (a *Archiver) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", key, err)
	}
	return data, nil
}
