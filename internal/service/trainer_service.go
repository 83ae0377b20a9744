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
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrClientNotManaged      = errors.New("client is not managed by this trainer")
)

// TrainerService manages the trainer's client roster.
type TrainerService interface {
	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	userRepo repository.UserRepository
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(userRepo repository.UserRepository) TrainerService {
	return &trainerService{
		userRepo: userRepo,
	}
}

// AddClientByEmail finds a client by email and assigns them to the trainer.
func (s *trainerService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			// Already managed by this trainer
			client.PasswordHash = ""
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	// Link both sides of the relationship. The unique email index plus the
	// TrainerID check above keep this effectively idempotent.
	err = s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID)
	if err != nil {
		return nil, err
	}
	err = s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID)
	if err != nil {
		return nil, err
	}

	client.TrainerID = &trainerID
	client.PasswordHash = ""
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the trainer.
func (s *trainerService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}
