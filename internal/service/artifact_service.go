package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrArtifactNotFound     = errors.New("artifact not found")
	ErrArtifactAccessDenied = errors.New("access denied to this artifact")
	ErrArtifactInvalid      = errors.New("artifact is missing required fields")
)

// ArtifactService is the read/write facade over generated plan and diagnosis
// records. Artifacts are append-only history: saving never replaces an
// earlier record, and listings return newest first.
type ArtifactService interface {
	Save(ctx context.Context, artifact *domain.Artifact) (*domain.Artifact, error)
	GetByID(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, artifactID primitive.ObjectID) (*domain.Artifact, error)
	ListForClient(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID) ([]domain.Artifact, error)
	ListAll(ctx context.Context) ([]domain.Artifact, error)
}

// artifactService implements the ArtifactService interface.
type artifactService struct {
	artifactRepo repository.ArtifactRepository
	userRepo     repository.UserRepository
}

// NewArtifactService creates a new instance of artifactService.
func NewArtifactService(artifactRepo repository.ArtifactRepository, userRepo repository.UserRepository) ArtifactService {
	return &artifactService{
		artifactRepo: artifactRepo,
		userRepo:     userRepo,
	}
}

// Save persists a new artifact and returns it with its generated ID and
// timestamp. The payload for the artifact's kind must already be populated.
func (s *artifactService) Save(ctx context.Context, artifact *domain.Artifact) (*domain.Artifact, error) {
	if artifact == nil || artifact.ClientID == primitive.NilObjectID {
		return nil, ErrArtifactInvalid
	}
	switch artifact.Kind {
	case domain.ArtifactTreatmentPlan:
		if artifact.Plan == nil {
			return nil, ErrArtifactInvalid
		}
	case domain.ArtifactDiagnosis:
		if artifact.Diagnosis == nil {
			return nil, ErrArtifactInvalid
		}
	default:
		return nil, ErrArtifactInvalid
	}

	id, err := s.artifactRepo.Create(ctx, artifact)
	if err != nil {
		return nil, err
	}
	artifact.ID = id
	return artifact, nil
}

// GetByID fetches a single artifact, enforcing who may see it: the client it
// belongs to, that client's trainer, or an admin.
func (s *artifactService) GetByID(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, artifactID primitive.ObjectID) (*domain.Artifact, error) {
	artifact, err := s.artifactRepo.GetByID(ctx, artifactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}

	if err := s.authorize(ctx, requesterID, requesterRole, artifact.ClientID); err != nil {
		return nil, err
	}
	return artifact, nil
}

// ListForClient returns the client's artifact history, newest first.
func (s *artifactService) ListForClient(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID) ([]domain.Artifact, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	if err := s.authorize(ctx, requesterID, requesterRole, clientID); err != nil {
		return nil, err
	}
	return s.artifactRepo.GetByClientID(ctx, clientID)
}

// ListAll returns every artifact in the store, newest first. Callers are
// expected to gate this behind the admin role.
func (s *artifactService) ListAll(ctx context.Context) ([]domain.Artifact, error) {
	return s.artifactRepo.GetAll(ctx)
}

// authorize checks whether the requester may read artifacts belonging to
// ownerID. Admins see everything, clients see their own records, and
// trainers see records of clients they manage.
func (s *artifactService) authorize(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, ownerID primitive.ObjectID) error {
	switch requesterRole {
	case domain.RoleAdmin:
		return nil
	case domain.RoleClient:
		if requesterID == ownerID {
			return nil
		}
	case domain.RoleTrainer:
		owner, err := s.userRepo.GetByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrArtifactAccessDenied
			}
			return err
		}
		if owner.TrainerID != nil && *owner.TrainerID == requesterID {
			return nil
		}
	}
	return ErrArtifactAccessDenied
}
