// Package gcs implements a Google Cloud Storage blob store.
package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/tactipus/courtlistener/internal/logging"

	"go.uber.org/zap"
)

// BlobStore writes original court files to a GCS bucket.
type BlobStore struct {
	client *storage.Client
	bucket string
}

// New initializes a GCS client and verifies the bucket is reachable, so
// bad configuration fails at startup instead of on the first commit.
// Authentication uses Application Default Credentials.
func New(ctx context.Context, bucketName string) (*BlobStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	if _, err := client.Bucket(bucketName).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.L.Warn("Failed to close GCS client after bucket check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucketName, err)
	}

	return &BlobStore{client: client, bucket: bucketName}, nil
}

// PutObject uploads data and returns a gs:// URI.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			logging.L.Warn("Failed to close GCS writer after write failure", zap.Error(closeErr))
		}
		return "", fmt.Errorf("write GCS object %s: %w", path, err)
	}
	// Close finalizes the upload; the object does not exist until it
	// returns.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer for object %s: %w", path, err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, path), nil
}
