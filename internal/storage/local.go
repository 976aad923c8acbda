package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalBucket writes blobs below a directory and serves them from a base URL.
type LocalBucket struct {
	dir     string
	baseURL string
}

func NewLocalBucket(dir, baseURL string) (*LocalBucket, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage: local directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create %s: %w", dir, err)
	}
	return &LocalBucket{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (b *LocalBucket) Put(ctx context.Context, key, contentType string, data []byte) (Object, error) {
	full, err := b.path(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("storage: failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return Object{}, fmt.Errorf("storage: failed to write %s: %w", key, err)
	}
	return Object{
		Key:         key,
		URL:         b.baseURL + "/" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (b *LocalBucket) Delete(ctx context.Context, key string) error {
	full, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: failed to delete %s: %w", key, err)
	}
	return nil
}

func (b *LocalBucket) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.TrimSpace(key) == "" {
		return "", errors.New("storage: object key is required")
	}
	return filepath.Join(b.dir, filepath.FromSlash(clean)), nil
}

var _ Bucket = (*LocalBucket)(nil)
