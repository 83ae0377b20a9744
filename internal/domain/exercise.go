// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryExercise is a reference exercise maintained by a trainer, shown in
// the exercise library views. It is distinct from Exercise, which is the
// free-text prescription embedded in a generated TreatmentPlan.
type LibraryExercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Trainer who owns this entry
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	BodyRegion string `bson:"bodyRegion,omitempty" json:"bodyRegion,omitempty"` // e.g. "Lumbar Spine", "Knee"
	Difficulty string `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g. "Gentle", "Moderate", "Advanced"
	VideoURL   string `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`     // Optional demonstration video

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
