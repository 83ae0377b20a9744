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
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("exercise validation failed")
)

// ExerciseService manages the trainer-maintained library of rehabilitation
// exercises. Library entries are reference material trainers draw on when
// reviewing generated plans; generated plans themselves carry free-text
// exercises and never link into the library.
type ExerciseService interface {
	CreateExercise(ctx context.Context, trainerID primitive.ObjectID, name, description, bodyRegion, difficulty, videoURL string) (*domain.LibraryExercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.LibraryExercise, error)
	GetExercisesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.LibraryExercise, error)
	UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, name, description, bodyRegion, difficulty, videoURL string) (*domain.LibraryExercise, error)
	DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

// CreateExercise handles the creation of a new library exercise by a trainer.
func (s *exerciseService) CreateExercise(ctx context.Context, trainerID primitive.ObjectID, name, description, bodyRegion, difficulty, videoURL string) (*domain.LibraryExercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required to create an exercise")
	}

	exercise := &domain.LibraryExercise{
		TrainerID:   trainerID,
		Name:        name,
		Description: description,
		BodyRegion:  bodyRegion,
		Difficulty:  difficulty,
		VideoURL:    videoURL, // Optional, can be empty
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again so timestamps set by the repository come back populated
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single library exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.LibraryExercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercisesByTrainer retrieves all library exercises for a trainer.
func (s *exerciseService) GetExercisesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.LibraryExercise, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID cannot be nil")
	}
	return s.exerciseRepo.GetByTrainerID(ctx, trainerID)
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, name, description, bodyRegion, difficulty, videoURL string) (*domain.LibraryExercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if trainerID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and exercise ID are required")
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	if existing.TrainerID != trainerID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = name
	existing.Description = description
	existing.BodyRegion = bodyRegion
	existing.Difficulty = difficulty
	existing.VideoURL = videoURL

	err = s.exerciseRepo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeleteExercise handles deleting an exercise, ensuring ownership.
// The repository's Delete filters by trainerID too, so ownership is
// enforced at the DB level.
func (s *exerciseService) DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	if trainerID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("trainer ID and exercise ID are required")
	}

	err := s.exerciseRepo.Delete(ctx, exerciseID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Could be missing or owned by another trainer; either way the
			// caller has nothing to delete.
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}
