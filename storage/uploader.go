package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored blob. Key is the bucket-relative name,
// Location the provider URL the write landed at.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the blob store used for team flags and export
// templates. Services depend on this interface, not on the R2 client.
type FileUploader interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL renders the browser-facing URL for a stored key.
	GetPublicURL(key string) string
}
