package storage

import (
	"context"
	"fmt"
	"strings"

	"catalogsync/internal/config"
)

// Open returns the bucket selected by STORAGE_BACKEND.
func Open(ctx context.Context, cfg config.StorageConfig) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "local":
		return NewLocalBucket(cfg.LocalDir, cfg.BaseURL)
	case "gcs":
		client, err := NewGCSClient(ctx, cfg.GCSCredentials)
		if err != nil {
			return nil, err
		}
		return NewGCSBucket(client, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
