package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSBucket stores blobs in a Cloud Storage bucket.
type GCSBucket struct {
	client *gcs.Client
	bucket string
}

// NewGCSClient opens a Cloud Storage client, using a service account file when one is given.
func NewGCSClient(ctx context.Context, credentialsFile string) (*gcs.Client, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create client: %w", err)
	}
	return client, nil
}

func NewGCSBucket(client *gcs.Client, bucket string) (*GCSBucket, error) {
	if client == nil {
		return nil, errors.New("storage: client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage: bucket name is required")
	}
	return &GCSBucket{client: client, bucket: bucket}, nil
}

func (b *GCSBucket) Put(ctx context.Context, key, contentType string, data []byte) (Object, error) {
	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("storage: failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("storage: failed to finalize %s: %w", key, err)
	}
	return Object{
		Key:         key,
		URL:         fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, key),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (b *GCSBucket) Delete(ctx context.Context, key string) error {
	err := b.client.Bucket(b.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: failed to delete %s: %w", key, err)
	}
	return nil
}

var _ Bucket = (*GCSBucket)(nil)
