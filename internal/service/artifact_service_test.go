package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/repository"
)

// memArtifactRepo is an in-memory ArtifactRepository that preserves the
// newest-first ordering contract of the mongo implementation.
type memArtifactRepo struct {
	artifacts []domain.Artifact
}

func (r *memArtifactRepo) Create(ctx context.Context, artifact *domain.Artifact) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *artifact
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.artifacts = append(r.artifacts, stored)
	return id, nil
}

func (r *memArtifactRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Artifact, error) {
	for i := range r.artifacts {
		if r.artifacts[i].ID == id {
			a := r.artifacts[i]
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memArtifactRepo) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Artifact, error) {
	var out []domain.Artifact
	for i := len(r.artifacts) - 1; i >= 0; i-- {
		if r.artifacts[i].ClientID == clientID {
			out = append(out, r.artifacts[i])
		}
	}
	return out, nil
}

func (r *memArtifactRepo) GetAll(ctx context.Context) ([]domain.Artifact, error) {
	out := make([]domain.Artifact, 0, len(r.artifacts))
	for i := len(r.artifacts) - 1; i >= 0; i-- {
		out = append(out, r.artifacts[i])
	}
	return out, nil
}

// memUserRepo implements the subset of UserRepository needed by the
// artifact authorization checks.
type memUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	user.ID = id
	if r.users == nil {
		r.users = map[primitive.ObjectID]*domain.User{}
	}
	r.users[id] = user
	return id, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	t, ok := r.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	t.ClientIDs = append(t.ClientIDs, clientID)
	return nil
}

func (r *memUserRepo) GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.TrainerID != nil && *u.TrainerID == trainerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	c, ok := r.users[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	c.TrainerID = &trainerID
	return nil
}

func seedUsers(t *testing.T, repo *memUserRepo) (trainerID, clientID, otherClientID primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()
	trainerID, _ = repo.Create(ctx, &domain.User{Name: "T", Email: "t@example.com", Role: domain.RoleTrainer})
	clientID, _ = repo.Create(ctx, &domain.User{Name: "C", Email: "c@example.com", Role: domain.RoleClient})
	otherClientID, _ = repo.Create(ctx, &domain.User{Name: "O", Email: "o@example.com", Role: domain.RoleClient})
	if err := repo.SetTrainerForClient(ctx, clientID, trainerID); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return trainerID, clientID, otherClientID
}

func planArtifact(clientID primitive.ObjectID) *domain.Artifact {
	return &domain.Artifact{
		ClientID: clientID,
		Kind:     domain.ArtifactTreatmentPlan,
		Plan:     &domain.TreatmentPlan{Overview: "test plan"},
		Source:   domain.SourceGenerated,
	}
}

func TestArtifactServiceSaveRejectsMismatchedPayload(t *testing.T) {
	svc := NewArtifactService(&memArtifactRepo{}, &memUserRepo{})
	ctx := context.Background()
	clientID := primitive.NewObjectID()

	cases := []struct {
		name     string
		artifact *domain.Artifact
	}{
		{"nil artifact", nil},
		{"missing client", &domain.Artifact{Kind: domain.ArtifactTreatmentPlan, Plan: &domain.TreatmentPlan{}}},
		{"plan kind without plan", &domain.Artifact{ClientID: clientID, Kind: domain.ArtifactTreatmentPlan}},
		{"diagnosis kind without diagnosis", &domain.Artifact{ClientID: clientID, Kind: domain.ArtifactDiagnosis}},
		{"unknown kind", &domain.Artifact{ClientID: clientID, Kind: "report", Plan: &domain.TreatmentPlan{}}},
	}
	for _, tc := range cases {
		if _, err := svc.Save(ctx, tc.artifact); !errors.Is(err, ErrArtifactInvalid) {
			t.Errorf("%s: expected ErrArtifactInvalid, got %v", tc.name, err)
		}
	}
}

func TestArtifactServiceListForClientScopesAndOrders(t *testing.T) {
	artifactRepo := &memArtifactRepo{}
	userRepo := &memUserRepo{}
	trainerID, clientID, otherClientID := seedUsers(t, userRepo)
	svc := NewArtifactService(artifactRepo, userRepo)
	ctx := context.Background()

	first, err := svc.Save(ctx, planArtifact(clientID))
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	if _, err := svc.Save(ctx, planArtifact(otherClientID)); err != nil {
		t.Fatalf("save other: %v", err)
	}
	second, err := svc.Save(ctx, planArtifact(clientID))
	if err != nil {
		t.Fatalf("save second: %v", err)
	}

	list, err := svc.ListForClient(ctx, clientID, domain.RoleClient, clientID)
	if err != nil {
		t.Fatalf("ListForClient: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 artifacts for client, got %d", len(list))
	}
	// Newest first
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("artifacts not ordered newest first: got %v then %v", list[0].ID, list[1].ID)
	}
	for _, a := range list {
		if a.ClientID != clientID {
			t.Errorf("listing leaked artifact for client %v", a.ClientID)
		}
	}

	// Trainer sees their managed client's history
	if _, err := svc.ListForClient(ctx, trainerID, domain.RoleTrainer, clientID); err != nil {
		t.Errorf("trainer should read managed client's artifacts: %v", err)
	}
}

func TestArtifactServiceAuthorization(t *testing.T) {
	artifactRepo := &memArtifactRepo{}
	userRepo := &memUserRepo{}
	trainerID, clientID, otherClientID := seedUsers(t, userRepo)
	svc := NewArtifactService(artifactRepo, userRepo)
	ctx := context.Background()

	saved, err := svc.Save(ctx, planArtifact(otherClientID))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Client cannot read another client's artifact
	if _, err := svc.GetByID(ctx, clientID, domain.RoleClient, saved.ID); !errors.Is(err, ErrArtifactAccessDenied) {
		t.Errorf("expected ErrArtifactAccessDenied for foreign client, got %v", err)
	}
	// Trainer cannot read an unmanaged client's artifact
	if _, err := svc.GetByID(ctx, trainerID, domain.RoleTrainer, saved.ID); !errors.Is(err, ErrArtifactAccessDenied) {
		t.Errorf("expected ErrArtifactAccessDenied for unmanaged client, got %v", err)
	}
	// Admin reads everything
	adminID := primitive.NewObjectID()
	if _, err := svc.GetByID(ctx, adminID, domain.RoleAdmin, saved.ID); err != nil {
		t.Errorf("admin read failed: %v", err)
	}
	// Owner reads their own
	if _, err := svc.GetByID(ctx, otherClientID, domain.RoleClient, saved.ID); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
}

func TestArtifactServiceListAllSupersetOrdering(t *testing.T) {
	artifactRepo := &memArtifactRepo{}
	userRepo := &memUserRepo{}
	_, clientID, otherClientID := seedUsers(t, userRepo)
	svc := NewArtifactService(artifactRepo, userRepo)
	ctx := context.Background()

	var ids []primitive.ObjectID
	for i := 0; i < 3; i++ {
		a, err := svc.Save(ctx, planArtifact(clientID))
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		ids = append(ids, a.ID)
		b, err := svc.Save(ctx, planArtifact(otherClientID))
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		ids = append(ids, b.ID)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != len(ids) {
		t.Fatalf("expected %d artifacts, got %d", len(ids), len(all))
	}
	// Newest first: reverse of insertion order
	for i, a := range all {
		want := ids[len(ids)-1-i]
		if a.ID != want {
			t.Fatalf("position %d: got %v, want %v", i, a.ID, want)
		}
	}
}
