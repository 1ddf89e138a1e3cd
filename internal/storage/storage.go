// Package storage persists objects in an S3-compatible bucket.
package storage

import "context"

// ObjectStore writes objects to a bucket. PutObject returns the key the
// object was stored under; callers turn it into a public URL.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
