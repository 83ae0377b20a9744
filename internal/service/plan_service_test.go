package service

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/assessment"
	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/generation"
)

// stubOrchestrator returns canned pipeline results.
type stubOrchestrator struct {
	planResult *generation.Result[domain.TreatmentPlan]
	diagResult *generation.Result[domain.DiagnosisResult]
	err        error
}

func (s *stubOrchestrator) GeneratePlan(ctx context.Context, a *domain.Assessment) (*generation.Result[domain.TreatmentPlan], error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.planResult, nil
}

func (s *stubOrchestrator) AnalyzeExamination(ctx context.Context, description string, mediaURLs []string) (*generation.Result[domain.DiagnosisResult], error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.diagResult, nil
}

func validIntakeSections() map[string]map[string]any {
	return map[string]map[string]any{
		domain.SectionPersonalInfo: {
			domain.FieldFullName: "Jordan Mills",
			"Age":                "41",
		},
		domain.SectionSymptoms: {
			domain.FieldPrimaryComplaint: "lower back pain when sitting",
			"Pain Level (0-10)":          "6",
		},
	}
}

func TestPlanServiceGeneratePlanPersistsArtifact(t *testing.T) {
	artifactRepo := &memArtifactRepo{}
	userRepo := &memUserRepo{}
	trainerID, clientID, _ := seedUsers(t, userRepo)
	artifacts := NewArtifactService(artifactRepo, userRepo)

	orch := &stubOrchestrator{
		planResult: &generation.Result[domain.TreatmentPlan]{
			Value:  &domain.TreatmentPlan{Overview: "generated overview"},
			Source: domain.SourceGenerated,
		},
	}
	svc := NewPlanService(orch, artifacts, userRepo)

	outcome, err := svc.GeneratePlan(context.Background(), trainerID, clientID, validIntakeSections())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if outcome.Source != domain.SourceGenerated {
		t.Errorf("source = %q, want %q", outcome.Source, domain.SourceGenerated)
	}
	if outcome.Plan == nil || outcome.Plan.Overview != "generated overview" {
		t.Errorf("unexpected plan: %+v", outcome.Plan)
	}
	if outcome.Artifact == nil || outcome.Artifact.ID == primitive.NilObjectID {
		t.Fatalf("expected persisted artifact with ID, got %+v", outcome.Artifact)
	}
	if outcome.Artifact.Kind != domain.ArtifactTreatmentPlan {
		t.Errorf("artifact kind = %q", outcome.Artifact.Kind)
	}
	if outcome.Artifact.Summary == "" {
		t.Error("artifact summary should carry the assessment summary")
	}

	stored, err := artifacts.ListForClient(context.Background(), clientID, domain.RoleClient, clientID)
	if err != nil {
		t.Fatalf("ListForClient: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored artifact, got %d", len(stored))
	}
}

func TestPlanServiceGeneratePlanPersistsFallbackOutcome(t *testing.T) {
	artifactRepo := &memArtifactRepo{}
	userRepo := &memUserRepo{}
	trainerID, clientID, _ := seedUsers(t, userRepo)
	artifacts := NewArtifactService(artifactRepo, userRepo)

	orch := &stubOrchestrator{
		planResult: &generation.Result[domain.TreatmentPlan]{
			Value:   &domain.TreatmentPlan{Overview: "canned"},
			Source:  domain.SourceFallback,
			Warning: "generation service unavailable (http 503)",
		},
	}
	svc := NewPlanService(orch, artifacts, userRepo)

	outcome, err := svc.GeneratePlan(context.Background(), trainerID, clientID, validIntakeSections())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if outcome.Source != domain.SourceFallback {
		t.Errorf("source = %q, want fallback", outcome.Source)
	}
	if outcome.Warning == "" {
		t.Error("fallback outcome should carry a warning")
	}
	// Fallback runs still leave a record on file
	if outcome.Artifact == nil || outcome.Artifact.Source != domain.SourceFallback {
		t.Errorf("artifact should record fallback provenance: %+v", outcome.Artifact)
	}
}

func TestPlanServiceGeneratePlanRejectsIncompleteIntake(t *testing.T) {
	artifactRepo := &memArtifactRepo{}
	userRepo := &memUserRepo{}
	trainerID, clientID, _ := seedUsers(t, userRepo)
	artifacts := NewArtifactService(artifactRepo, userRepo)
	svc := NewPlanService(&stubOrchestrator{}, artifacts, userRepo)

	sections := validIntakeSections()
	delete(sections[domain.SectionSymptoms], domain.FieldPrimaryComplaint)

	_, err := svc.GeneratePlan(context.Background(), trainerID, clientID, sections)
	var vErr *assessment.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != domain.FieldPrimaryComplaint {
		t.Errorf("validation field = %q", vErr.Field)
	}
	// Nothing persisted on rejected input
	if all, _ := artifactRepo.GetAll(context.Background()); len(all) != 0 {
		t.Errorf("expected no artifacts, got %d", len(all))
	}
}

func TestPlanServiceGeneratePlanRequiresManagedClient(t *testing.T) {
	artifactRepo := &memArtifactRepo{}
	userRepo := &memUserRepo{}
	trainerID, _, unmanagedID := seedUsers(t, userRepo)
	artifacts := NewArtifactService(artifactRepo, userRepo)
	svc := NewPlanService(&stubOrchestrator{}, artifacts, userRepo)

	_, err := svc.GeneratePlan(context.Background(), trainerID, unmanagedID, validIntakeSections())
	if !errors.Is(err, ErrClientNotManaged) {
		t.Fatalf("expected ErrClientNotManaged, got %v", err)
	}

	_, err = svc.GeneratePlan(context.Background(), trainerID, primitive.NewObjectID(), validIntakeSections())
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}
