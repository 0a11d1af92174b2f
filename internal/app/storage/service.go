// Package storage provides the blob store used for avatar images.
package storage

import (
	"context"
	"io"
)

// ServiceConfig holds the settings required to reach the blob store.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3PublicBaseURL is the public base from which stored objects are
	// served; uploaded keys are appended to it to form durable URLs.
	S3PublicBaseURL string
}

// StorageService is the interface the rest of the application consumes:
// store bytes under a key, get back a durable URL.
type StorageService interface {
	// Upload stores body under key with the given MIME type and returns the
	// object's durable public URL.
	Upload(ctx context.Context, key string, mimeType string, body io.Reader) (string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}

// NewStorageService initializes and returns the concrete implementation for
// the provided configuration. Only S3-compatible backends are supported.
func NewStorageService(cfg ServiceConfig) (StorageService, error) {
	return newS3Client(cfg)
}
