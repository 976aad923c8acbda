// Package storage keeps imported media bytes in a blob bucket.
package storage

import "context"

// Object describes a stored blob.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Bucket stores blobs under slash-separated keys.
type Bucket interface {
	Put(ctx context.Context, key, contentType string, data []byte) (Object, error)
	// Delete removes a blob. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
