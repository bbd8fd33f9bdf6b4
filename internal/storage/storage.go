// Package storage abstracts blob storage for generated assets, currently
// the rendered QR code images.
//
// Two backends exist: Local keeps files on disk for development, S3 talks
// to any S3-compatible endpoint (AWS, MinIO, R2) for production.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the blob store contract. All methods take a context for
// timeout and cancellation.
type Storage interface {
	// Put stores data at key. Fails with ErrKeyExists when the key is
	// taken and opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get returns the object's data and metadata. The caller closes the
	// reader. Missing keys yield ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns an access URL for the object. A zero expiry asks for a
	// permanent public URL where the backend supports one.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type recorded with the object.
	ContentType string

	// Overwrite permits replacing an existing object at the same key.
	Overwrite bool

	// Public marks the object world-readable on backends with ACLs.
	Public bool
}

// ObjectInfo is metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig configures filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory for stored files.
	BasePath string

	// BaseURL is the public prefix files are served under.
	BaseURL string
}

// S3Config configures S3-compatible storage.
type S3Config struct {
	// Endpoint overrides the AWS endpoint for S3-compatible providers.
	// Empty means stock AWS S3.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string

	// PublicURL, when set, is used for permanent URLs instead of
	// presigning.
	PublicURL string
}
