package service

import (
	"context"
	"errors"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/repository"
)

// AdminService provides the practice-wide views reserved for admins:
// every generated artifact and the full user roster by role.
type AdminService interface {
	ListAllArtifacts(ctx context.Context) ([]domain.Artifact, error)
	ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// adminService implements the AdminService interface.
type adminService struct {
	artifacts ArtifactService
	userRepo  repository.UserRepository
}

// NewAdminService creates a new instance of adminService.
func NewAdminService(artifacts ArtifactService, userRepo repository.UserRepository) AdminService {
	return &adminService{
		artifacts: artifacts,
		userRepo:  userRepo,
	}
}

// ListAllArtifacts returns every artifact in the store, newest first.
func (s *adminService) ListAllArtifacts(ctx context.Context) ([]domain.Artifact, error) {
	return s.artifacts.ListAll(ctx)
}

// ListUsersByRole returns all users with the given role, hashes stripped.
func (s *adminService) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	role = domain.NormalizeRole(role)
	if !domain.ValidRole(role) {
		return nil, errors.New("unknown role")
	}
	users, err := s.userRepo.GetByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
