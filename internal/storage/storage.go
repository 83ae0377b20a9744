package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// Examination media can be referenced by the generative service for the
// whole duration of an analysis call, so download references live longer
// than the interactive upload window.
const MediaReferenceExpiry = 1 * time.Hour

// FileStorage defines the interface for object storage operations. The
// backend only ever hands out references: clients upload directly via
// presigned PUT, and the diagnosis pipeline consumes presigned GET URLs,
// never raw bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT
	// requests for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for downloading/viewing an object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
