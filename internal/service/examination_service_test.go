package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/generation"
	"physioflow/recovery-app/internal/repository"
)

// memMediaRepo is an in-memory MediaUploadRepository.
type memMediaRepo struct {
	uploads map[primitive.ObjectID]*domain.MediaUpload
}

func (r *memMediaRepo) Create(ctx context.Context, upload *domain.MediaUpload) (primitive.ObjectID, error) {
	if r.uploads == nil {
		r.uploads = map[primitive.ObjectID]*domain.MediaUpload{}
	}
	id := primitive.NewObjectID()
	stored := *upload
	stored.ID = id
	stored.UploadedAt = time.Now()
	r.uploads[id] = &stored
	return id, nil
}

func (r *memMediaRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MediaUpload, error) {
	u, ok := r.uploads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *memMediaRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.MediaUpload, error) {
	var out []domain.MediaUpload
	for _, id := range ids {
		if u, ok := r.uploads[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memMediaRepo) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.MediaUpload, error) {
	var out []domain.MediaUpload
	for _, u := range r.uploads {
		if u.ClientID == clientID {
			out = append(out, *u)
		}
	}
	return out, nil
}

// stubStorage fabricates URLs from the object key so tests can assert what
// was presigned without touching S3.
type stubStorage struct {
	presignedKeys []string
}

func (s *stubStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	s.presignedKeys = append(s.presignedKeys, objectKey)
	return "https://storage.test/put/" + objectKey, nil
}

func (s *stubStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	s.presignedKeys = append(s.presignedKeys, objectKey)
	return "https://storage.test/get/" + objectKey, nil
}

type examinationFixture struct {
	svc           ExaminationService
	mediaRepo     *memMediaRepo
	store         *stubStorage
	trainerID     primitive.ObjectID
	clientID      primitive.ObjectID
	otherClientID primitive.ObjectID
}

func newExaminationFixture(t *testing.T) *examinationFixture {
	t.Helper()
	userRepo := &memUserRepo{}
	trainerID, clientID, otherClientID := seedUsers(t, userRepo)
	artifacts := NewArtifactService(&memArtifactRepo{}, userRepo)
	mediaRepo := &memMediaRepo{}
	store := &stubStorage{}
	orch := &stubOrchestrator{
		diagResult: &generation.Result[domain.DiagnosisResult]{
			Value:  &domain.DiagnosisResult{Assessment: "postural imbalance", UrgencyLevel: domain.UrgencyLow},
			Source: domain.SourceGenerated,
		},
	}
	return &examinationFixture{
		svc:           NewExaminationService(orch, artifacts, mediaRepo, userRepo, store),
		mediaRepo:     mediaRepo,
		store:         store,
		trainerID:     trainerID,
		clientID:      clientID,
		otherClientID: otherClientID,
	}
}

func TestExaminationUploadURLValidation(t *testing.T) {
	f := newExaminationFixture(t)
	ctx := context.Background()

	if _, err := f.svc.RequestMediaUploadURL(ctx, f.trainerID, domain.RoleTrainer, f.clientID, "video/mp4"); err == nil {
		t.Error("non-image content type should be rejected")
	}
	if _, err := f.svc.RequestMediaUploadURL(ctx, f.trainerID, domain.RoleTrainer, f.clientID, ""); err == nil {
		t.Error("empty content type should be rejected")
	}

	resp, err := f.svc.RequestMediaUploadURL(ctx, f.trainerID, domain.RoleTrainer, f.clientID, "image/jpeg")
	if err != nil {
		t.Fatalf("RequestMediaUploadURL: %v", err)
	}
	if resp.UploadURL == "" || resp.ObjectKey == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}
	if !strings.HasPrefix(resp.ObjectKey, fmt.Sprintf("examinations/%s/", f.clientID.Hex())) {
		t.Errorf("object key not scoped to client: %q", resp.ObjectKey)
	}
	if !strings.HasSuffix(resp.ObjectKey, ".jpeg") {
		t.Errorf("object key missing extension: %q", resp.ObjectKey)
	}
}

func TestExaminationClientSelfService(t *testing.T) {
	f := newExaminationFixture(t)
	ctx := context.Background()

	// A client runs the whole flow on themselves.
	resp, err := f.svc.RequestMediaUploadURL(ctx, f.clientID, domain.RoleClient, f.clientID, "image/png")
	if err != nil {
		t.Fatalf("RequestMediaUploadURL as client: %v", err)
	}
	up, err := f.svc.ConfirmMediaUpload(ctx, f.clientID, domain.RoleClient, f.clientID, resp.ObjectKey, "gait.png", 4096, "image/png")
	if err != nil {
		t.Fatalf("ConfirmMediaUpload as client: %v", err)
	}
	uploads, err := f.svc.GetClientMedia(ctx, f.clientID, domain.RoleClient, f.clientID)
	if err != nil || len(uploads) != 1 {
		t.Fatalf("GetClientMedia as client: %v (%d uploads)", err, len(uploads))
	}
	outcome, err := f.svc.AnalyzeExamination(ctx, f.clientID, domain.RoleClient, f.clientID, "knee pain when climbing stairs", []primitive.ObjectID{up.ID})
	if err != nil {
		t.Fatalf("AnalyzeExamination as client: %v", err)
	}
	if outcome.Artifact == nil || outcome.Artifact.ClientID != f.clientID {
		t.Errorf("artifact not recorded for the client: %+v", outcome.Artifact)
	}

	// But never on anyone else.
	if _, err := f.svc.RequestMediaUploadURL(ctx, f.clientID, domain.RoleClient, f.otherClientID, "image/png"); !errors.Is(err, ErrExaminationAccessDenied) {
		t.Errorf("expected ErrExaminationAccessDenied for foreign upload URL, got %v", err)
	}
	if _, err := f.svc.GetClientMedia(ctx, f.clientID, domain.RoleClient, f.otherClientID); !errors.Is(err, ErrExaminationAccessDenied) {
		t.Errorf("expected ErrExaminationAccessDenied for foreign media listing, got %v", err)
	}
	if _, err := f.svc.AnalyzeExamination(ctx, f.clientID, domain.RoleClient, f.otherClientID, "desc", []primitive.ObjectID{up.ID}); !errors.Is(err, ErrExaminationAccessDenied) {
		t.Errorf("expected ErrExaminationAccessDenied for foreign analysis, got %v", err)
	}
}

func TestExaminationTrainerScopedToManagedClients(t *testing.T) {
	f := newExaminationFixture(t)
	ctx := context.Background()

	if _, err := f.svc.RequestMediaUploadURL(ctx, f.trainerID, domain.RoleTrainer, f.otherClientID, "image/jpeg"); !errors.Is(err, ErrClientNotManaged) {
		t.Errorf("expected ErrClientNotManaged, got %v", err)
	}
	if _, err := f.svc.GetClientMedia(ctx, f.trainerID, domain.RoleTrainer, f.otherClientID); !errors.Is(err, ErrClientNotManaged) {
		t.Errorf("expected ErrClientNotManaged, got %v", err)
	}
}

func TestExaminationAnalyzePersistsDiagnosisArtifact(t *testing.T) {
	f := newExaminationFixture(t)
	ctx := context.Background()

	up1, err := f.svc.ConfirmMediaUpload(ctx, f.trainerID, domain.RoleTrainer, f.clientID, "examinations/k1.jpeg", "front.jpeg", 1024, "image/jpeg")
	if err != nil {
		t.Fatalf("ConfirmMediaUpload: %v", err)
	}
	up2, err := f.svc.ConfirmMediaUpload(ctx, f.trainerID, domain.RoleTrainer, f.clientID, "examinations/k2.jpeg", "side.jpeg", 2048, "image/jpeg")
	if err != nil {
		t.Fatalf("ConfirmMediaUpload: %v", err)
	}

	outcome, err := f.svc.AnalyzeExamination(ctx, f.trainerID, domain.RoleTrainer, f.clientID, "limited shoulder abduction", []primitive.ObjectID{up1.ID, up2.ID})
	if err != nil {
		t.Fatalf("AnalyzeExamination: %v", err)
	}
	if outcome.Diagnosis == nil || outcome.Diagnosis.Assessment == "" {
		t.Fatalf("missing diagnosis: %+v", outcome)
	}
	if outcome.Artifact == nil || outcome.Artifact.Kind != domain.ArtifactDiagnosis {
		t.Errorf("expected diagnosis artifact, got %+v", outcome.Artifact)
	}
	if outcome.Artifact.Summary != "limited shoulder abduction" {
		t.Errorf("summary = %q", outcome.Artifact.Summary)
	}
	// Both media objects were presigned for the external call
	found := 0
	for _, key := range f.store.presignedKeys {
		if key == "examinations/k1.jpeg" || key == "examinations/k2.jpeg" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("expected both media keys presigned, got %v", f.store.presignedKeys)
	}
}

func TestExaminationAnalyzeRejectsForeignOrMissingMedia(t *testing.T) {
	f := newExaminationFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AnalyzeExamination(ctx, f.trainerID, domain.RoleTrainer, f.clientID, "desc", nil); !errors.Is(err, ErrMediaRequired) {
		t.Errorf("expected ErrMediaRequired, got %v", err)
	}

	if _, err := f.svc.AnalyzeExamination(ctx, f.trainerID, domain.RoleTrainer, f.clientID, "desc", []primitive.ObjectID{primitive.NewObjectID()}); !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("expected ErrMediaNotFound for unknown media, got %v", err)
	}
}

func TestExaminationDescriptionSummaryTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := summarizeDescription(long)
	if len(got) != 123 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected truncation: len=%d %q", len(got), got[:20])
	}
	if summarizeDescription("  short  ") != "short" {
		t.Error("short descriptions should only be trimmed")
	}

	// A multi-byte rune straddling the cut point must not be split.
	multibyte := strings.Repeat("a", 119) + strings.Repeat("世", 10)
	got = summarizeDescription(multibyte)
	if !utf8.ValidString(got) {
		t.Errorf("truncated summary is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("a", 119)+"..." {
		t.Errorf("expected cut before the split rune, got %q", got)
	}
}
