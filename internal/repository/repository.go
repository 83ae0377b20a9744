package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors from transient driver
// errors. A repository failure that is not ErrNotFound is a storage failure
// and propagates to the caller: silently losing a generated artifact would
// be a data-loss bug, not a degraded outcome.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// ArtifactRepository stores generated treatment plans and diagnoses.
// Artifacts are append-only: no update or delete. All listings are ordered
// by creation time descending, ties broken by insertion order.
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *domain.Artifact) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Artifact, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Artifact, error)
	GetAll(ctx context.Context) ([]domain.Artifact, error)
}

// AppointmentRepository defines the interface for scheduling data.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Appointment, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AppointmentStatus, notes string) error
}

// MediaUploadRepository stores metadata for examination media. The bytes
// live in object storage; this tracks the stable references.
type MediaUploadRepository interface {
	Create(ctx context.Context, upload *domain.MediaUpload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MediaUpload, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.MediaUpload, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.MediaUpload, error)
}

// ExerciseRepository defines the interface for the trainer-maintained
// exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.LibraryExercise, error)
	Update(ctx context.Context, exercise *domain.LibraryExercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}
