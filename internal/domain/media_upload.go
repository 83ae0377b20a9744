// internal/domain/media_upload.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaUpload stores metadata about an examination file (posture photo, gait
// video) uploaded by a client. The actual bytes reside in S3; the diagnosis
// pipeline consumes only the stable reference, never the raw file.
type MediaUpload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // Internal storage key, not exposed
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"` // e.g. "image/jpeg", "video/mp4"
	Size        int64              `bson:"size" json:"size"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
