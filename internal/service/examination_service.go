package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/generation"
	"physioflow/recovery-app/internal/repository"
	"physioflow/recovery-app/internal/storage"
)

// --- Error Definitions ---
var (
	ErrMediaNotFound            = errors.New("examination media not found")
	ErrMediaNotBelongToClient   = errors.New("examination media does not belong to this client")
	ErrMediaRequired            = errors.New("at least one examination media file is required")
	ErrUnsupportedMediaType     = errors.New("examination media must be an image")
	ErrExaminationAccessDenied  = errors.New("access denied to this client's examinations")
	ErrUploadURLError           = errors.New("failed to generate upload URL")
	ErrDownloadURLError         = errors.New("failed to generate download URL")
	ErrUploadConfirmationFailed = errors.New("failed to confirm upload")
)

// UploadURLResponse carries the pre-signed URL plus the object key the
// client must report back when confirming the upload.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// DiagnosisOutcome is the result of an examination analysis run together
// with the saved history record.
type DiagnosisOutcome struct {
	Diagnosis *domain.DiagnosisResult `json:"diagnosis"`
	Source    domain.GenerationSource `json:"source"`
	Warning   string                  `json:"warning,omitempty"`
	Artifact  *domain.Artifact        `json:"artifact"`
}

// ExaminationService handles examination media (photos of posture, range of
// motion, affected areas) and runs the media-based diagnosis pipeline.
// Media bytes go straight to object storage via pre-signed URLs; the server
// only ever stores and hands out references.
//
// Every method is requester-scoped: a client acts on their own record, a
// trainer on clients they manage.
type ExaminationService interface {
	RequestMediaUploadURL(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmMediaUpload(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.MediaUpload, error)
	GetClientMedia(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID) ([]domain.MediaUpload, error)
	AnalyzeExamination(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID, description string, mediaIDs []primitive.ObjectID) (*DiagnosisOutcome, error)
}

// examinationService implements the ExaminationService interface.
type examinationService struct {
	orchestrator generation.Orchestrator
	artifacts    ArtifactService
	mediaRepo    repository.MediaUploadRepository
	userRepo     repository.UserRepository
	fileStorage  storage.FileStorage
}

// NewExaminationService creates a new instance of examinationService.
func NewExaminationService(
	orchestrator generation.Orchestrator,
	artifacts ArtifactService,
	mediaRepo repository.MediaUploadRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
) ExaminationService {
	return &examinationService{
		orchestrator: orchestrator,
		artifacts:    artifacts,
		mediaRepo:    mediaRepo,
		userRepo:     userRepo,
		fileStorage:  fileStorage,
	}
}

// RequestMediaUploadURL generates a pre-signed URL for uploading one
// examination image.
func (s *examinationService) RequestMediaUploadURL(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if requesterID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("requester ID and client ID are required")
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrUnsupportedMediaType
	}

	if err := s.authorizeClientAccess(ctx, requesterID, requesterRole, clientID); err != nil {
		return nil, err
	}

	// Unique object key per upload, grouped by client
	uniqueID := uuid.NewString()
	fileExtension := ""
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("examinations", clientID.Hex(), fmt.Sprintf("%s.%s", uniqueID, fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmMediaUpload records the metadata after the file has landed in
// object storage via the pre-signed URL.
func (s *examinationService) ConfirmMediaUpload(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) (*domain.MediaUpload, error) {
	if requesterID == primitive.NilObjectID || clientID == primitive.NilObjectID || objectKey == "" {
		return nil, errors.New("requester ID, client ID, and object key are required")
	}

	if err := s.authorizeClientAccess(ctx, requesterID, requesterRole, clientID); err != nil {
		return nil, err
	}

	upload := &domain.MediaUpload{
		ClientID:    clientID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        fileSize,
		// ID, UploadedAt set by repository
	}

	uploadID, err := s.mediaRepo.Create(ctx, upload)
	if err != nil {
		return nil, ErrUploadConfirmationFailed
	}
	upload.ID = uploadID
	return upload, nil
}

// GetClientMedia lists the examination media recorded for a client, newest
// first.
func (s *examinationService) GetClientMedia(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID) ([]domain.MediaUpload, error) {
	if err := s.authorizeClientAccess(ctx, requesterID, requesterRole, clientID); err != nil {
		return nil, err
	}
	return s.mediaRepo.GetByClientID(ctx, clientID)
}

// AnalyzeExamination resolves the referenced media to temporary download
// URLs, runs the diagnosis pipeline, and records the outcome as an artifact.
// The media URLs get a longer expiry than ordinary downloads so they stay
// valid for the duration of the external call.
func (s *examinationService) AnalyzeExamination(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID, description string, mediaIDs []primitive.ObjectID) (*DiagnosisOutcome, error) {
	if requesterID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("requester ID and client ID are required")
	}
	if len(mediaIDs) == 0 {
		return nil, ErrMediaRequired
	}

	if err := s.authorizeClientAccess(ctx, requesterID, requesterRole, clientID); err != nil {
		return nil, err
	}

	uploads, err := s.mediaRepo.GetByIDs(ctx, mediaIDs)
	if err != nil {
		return nil, err
	}
	if len(uploads) != len(mediaIDs) {
		return nil, ErrMediaNotFound
	}

	mediaURLs := make([]string, 0, len(uploads))
	for _, u := range uploads {
		if u.ClientID != clientID {
			return nil, ErrMediaNotBelongToClient
		}
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, u.S3ObjectKey, storage.MediaReferenceExpiry)
		if err != nil {
			return nil, ErrDownloadURLError
		}
		mediaURLs = append(mediaURLs, url)
	}

	result, err := s.orchestrator.AnalyzeExamination(ctx, description, mediaURLs)
	if err != nil {
		return nil, err
	}

	artifact := &domain.Artifact{
		ClientID:  clientID,
		Kind:      domain.ArtifactDiagnosis,
		Diagnosis: result.Value,
		Source:    result.Source,
		Warning:   result.Warning,
		Summary:   summarizeDescription(description),
	}
	saved, err := s.artifacts.Save(ctx, artifact)
	if err != nil {
		return nil, err
	}

	return &DiagnosisOutcome{
		Diagnosis: result.Value,
		Source:    result.Source,
		Warning:   result.Warning,
		Artifact:  saved,
	}, nil
}

// authorizeClientAccess confirms the requester may handle this client's
// examination media: clients act on themselves, trainers on clients they
// manage.
func (s *examinationService) authorizeClientAccess(ctx context.Context, requesterID primitive.ObjectID, requesterRole domain.Role, clientID primitive.ObjectID) error {
	if domain.NormalizeRole(requesterRole) == domain.RoleClient {
		if requesterID != clientID {
			return ErrExaminationAccessDenied
		}
		return nil
	}

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
	if client.TrainerID == nil || *client.TrainerID != requesterID {
		return ErrClientNotManaged
	}
	return nil
}

// summarizeDescription trims the free-text description down to a short
// label for artifact listings. Truncation lands on a rune boundary so the
// stored summary stays valid UTF-8.
func summarizeDescription(description string) string {
	const maxLen = 120
	description = strings.TrimSpace(description)
	if len(description) <= maxLen {
		return description
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(description[cut]) {
		cut--
	}
	return description[:cut] + "..."
}
