// Package blob stores binary media (crop images, synthesized audio) and
// hands out ids that chat turns reference instead of raw bytes.
package blob

import (
	"context"
	"time"
)

// Store persists opaque blobs under server-minted ids.
type Store interface {
	// Put saves the blob and returns its id.
	Put(ctx context.Context, contentType string, data []byte) (string, error)
	// SignedURL returns a time-limited download link for a stored blob.
	SignedURL(ctx context.Context, id string, ttl time.Duration) (string, error)
}
