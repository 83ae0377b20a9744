package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/assessment"
	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/generation"
	"physioflow/recovery-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAssessmentInvalid = errors.New("assessment data is invalid")
)

// PlanGenerationOutcome is what the trainer gets back after a generation
// run: the plan itself, where it came from, and the saved history record.
type PlanGenerationOutcome struct {
	Plan     *domain.TreatmentPlan   `json:"plan"`
	Source   domain.GenerationSource `json:"source"`
	Warning  string                  `json:"warning,omitempty"`
	Artifact *domain.Artifact        `json:"artifact"`
}

// PlanService drives the assessment-to-plan pipeline for managed clients.
type PlanService interface {
	GeneratePlan(ctx context.Context, trainerID, clientID primitive.ObjectID, sections map[string]map[string]any) (*PlanGenerationOutcome, error)
}

// planService implements the PlanService interface.
type planService struct {
	orchestrator generation.Orchestrator
	artifacts    ArtifactService
	userRepo     repository.UserRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(orchestrator generation.Orchestrator, artifacts ArtifactService, userRepo repository.UserRepository) PlanService {
	return &planService{
		orchestrator: orchestrator,
		artifacts:    artifacts,
		userRepo:     userRepo,
	}
}

// GeneratePlan aggregates the submitted intake sections, runs the generation
// pipeline, and records the outcome as a new artifact for the client. A
// fallback outcome is still persisted: the client always ends up with a plan
// on file, and the artifact's Source and Warning say how it was produced.
func (s *planService) GeneratePlan(ctx context.Context, trainerID, clientID primitive.ObjectID, sections map[string]map[string]any) (*PlanGenerationOutcome, error) {
	if trainerID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and client ID are required")
	}

	if err := s.verifyManagedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}

	agg, err := assessment.Aggregate(sections)
	if err != nil {
		var vErr *assessment.ValidationError
		if errors.As(err, &vErr) {
			return nil, err // Handlers map ValidationError to a 400
		}
		return nil, ErrAssessmentInvalid
	}

	result, err := s.orchestrator.GeneratePlan(ctx, agg)
	if err != nil {
		return nil, err
	}

	artifact := &domain.Artifact{
		ClientID: clientID,
		Kind:     domain.ArtifactTreatmentPlan,
		Plan:     result.Value,
		Source:   result.Source,
		Warning:  result.Warning,
		Summary:  agg.Summary(),
	}
	saved, err := s.artifacts.Save(ctx, artifact)
	if err != nil {
		return nil, err
	}

	return &PlanGenerationOutcome{
		Plan:     result.Value,
		Source:   result.Source,
		Warning:  result.Warning,
		Artifact: saved,
	}, nil
}

// verifyManagedClient confirms the target is a client managed by this
// trainer before any generation work starts.
func (s *planService) verifyManagedClient(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	if client.Role != domain.RoleClient {
		return ErrClientNotRole
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return ErrClientNotManaged
	}
	return nil
}
