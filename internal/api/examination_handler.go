// internal/api/examination_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/service"
)

// ExaminationHandler exposes the media upload flow and the diagnosis
// pipeline. It serves both route shapes: trainer routes carry a clientId
// path parameter, client routes act on the authenticated client themselves.
type ExaminationHandler struct {
	examinationService service.ExaminationService
}

func NewExaminationHandler(examinationService service.ExaminationService) *ExaminationHandler {
	return &ExaminationHandler{examinationService: examinationService}
}

// --- DTOs ---

type RequestMediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"` // e.g. "image/jpeg"
}

type ConfirmMediaUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1"`
	ContentType string `json:"contentType" binding:"required"`
}

type MediaUploadResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type AnalyzeExaminationRequest struct {
	Description string   `json:"description"`
	MediaIDs    []string `json:"mediaIds" binding:"required,min=1"`
}

// DiagnosisResponse is returned from an examination analysis run.
type DiagnosisResponse struct {
	Diagnosis *domain.DiagnosisResult `json:"diagnosis"`
	Source    domain.GenerationSource `json:"source"`
	Warning   string                  `json:"warning,omitempty"`
	Artifact  ArtifactResponse        `json:"artifact"`
}

func MapMediaUploadToResponse(u *domain.MediaUpload) MediaUploadResponse {
	if u == nil {
		return MediaUploadResponse{}
	}
	return MediaUploadResponse{
		ID:          u.ID.Hex(),
		ClientID:    u.ClientID.Hex(),
		FileName:    u.FileName,
		ContentType: u.ContentType,
		Size:        u.Size,
		UploadedAt:  u.UploadedAt,
	}
}

func MapMediaUploadsToResponse(uploads []domain.MediaUpload) []MediaUploadResponse {
	responses := make([]MediaUploadResponse, len(uploads))
	for i := range uploads {
		responses[i] = MapMediaUploadToResponse(&uploads[i])
	}
	return responses
}

// --- Handler Methods ---

// examinationActors resolves the authenticated requester and the target
// client. On client routes there is no clientId path parameter, so the
// requester is the target.
func (h *ExaminationHandler) examinationActors(c *gin.Context) (requesterID primitive.ObjectID, role domain.Role, clientID primitive.ObjectID, ok bool) {
	requesterID, ok = requireUserID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user role from token")
		ok = false
		return
	}

	hex := c.Param("clientId")
	if hex == "" {
		return requesterID, role, requesterID, true
	}
	clientID, err = primitive.ObjectIDFromHex(hex)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format in URL path.")
		ok = false
		return
	}
	return requesterID, role, clientID, true
}

// RequestMediaUploadURL godoc
// @Summary Get a pre-signed URL for uploading examination media
// @Description Generates a temporary S3 PUT URL for one examination image of a managed client.
// @Tags Examinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Param uploadRequest body RequestMediaUploadRequest true "Content type of the file"
// @Success 200 {object} service.UploadURLResponse "Pre-signed URL and object key"
// @Failure 400 {object} gin.H "Invalid input or unsupported content type"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (client not managed)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/clients/{clientId}/examinations/upload-url [post]
func (h *ExaminationHandler) RequestMediaUploadURL(c *gin.Context) {
	requesterID, role, clientID, ok := h.examinationActors(c)
	if !ok {
		return
	}

	var req RequestMediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	resp, err := h.examinationService.RequestMediaUploadURL(c.Request.Context(), requesterID, role, clientID, req.ContentType)
	if err != nil {
		h.mapExaminationError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmMediaUpload godoc
// @Summary Confirm an examination media upload
// @Description Records metadata after the file has been uploaded to storage with the pre-signed URL.
// @Tags Examinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Param confirmRequest body ConfirmMediaUploadRequest true "Uploaded file details"
// @Success 201 {object} MediaUploadResponse "Upload recorded"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (client not managed)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/clients/{clientId}/examinations/confirm [post]
func (h *ExaminationHandler) ConfirmMediaUpload(c *gin.Context) {
	requesterID, role, clientID, ok := h.examinationActors(c)
	if !ok {
		return
	}

	var req ConfirmMediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	upload, err := h.examinationService.ConfirmMediaUpload(c.Request.Context(), requesterID, role, clientID, req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		h.mapExaminationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapMediaUploadToResponse(upload))
}

// GetClientMedia godoc
// @Summary List examination media for a client
// @Description Retrieves metadata for the client's uploaded examination media, newest first.
// @Tags Examinations
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Success 200 {array} MediaUploadResponse "Media metadata"
// @Failure 400 {object} gin.H "Invalid client ID format"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (client not managed)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/clients/{clientId}/examinations/media [get]
func (h *ExaminationHandler) GetClientMedia(c *gin.Context) {
	requesterID, role, clientID, ok := h.examinationActors(c)
	if !ok {
		return
	}

	uploads, err := h.examinationService.GetClientMedia(c.Request.Context(), requesterID, role, clientID)
	if err != nil {
		h.mapExaminationError(c, err)
		return
	}

	if uploads == nil {
		c.JSON(http.StatusOK, []MediaUploadResponse{})
		return
	}
	c.JSON(http.StatusOK, MapMediaUploadsToResponse(uploads))
}

// AnalyzeExamination godoc
// @Summary Run the diagnosis pipeline on examination media
// @Description Analyses the referenced media plus an optional description and stores the outcome. Always returns a diagnosis; the source field says whether it was generated or a fallback.
// @Tags Examinations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Param analyzeRequest body AnalyzeExaminationRequest true "Media references and description"
// @Success 201 {object} DiagnosisResponse "Diagnosis generated and stored"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (client not managed, or media belongs to another client)"
// @Failure 404 {object} gin.H "Referenced media not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/clients/{clientId}/examinations/analyze [post]
func (h *ExaminationHandler) AnalyzeExamination(c *gin.Context) {
	requesterID, role, clientID, ok := h.examinationActors(c)
	if !ok {
		return
	}

	var req AnalyzeExaminationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	mediaIDs := make([]primitive.ObjectID, 0, len(req.MediaIDs))
	for _, hex := range req.MediaIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid media ID format: "+hex)
			return
		}
		mediaIDs = append(mediaIDs, id)
	}

	outcome, err := h.examinationService.AnalyzeExamination(c.Request.Context(), requesterID, role, clientID, req.Description, mediaIDs)
	if err != nil {
		h.mapExaminationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, DiagnosisResponse{
		Diagnosis: outcome.Diagnosis,
		Source:    outcome.Source,
		Warning:   outcome.Warning,
		Artifact:  MapArtifactToResponse(outcome.Artifact),
	})
}

// mapExaminationError translates examination service errors to HTTP codes.
func (h *ExaminationHandler) mapExaminationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound), errors.Is(err, service.ErrMediaNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientNotManaged), errors.Is(err, service.ErrClientNotRole), errors.Is(err, service.ErrMediaNotBelongToClient), errors.Is(err, service.ErrExaminationAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMediaRequired), errors.Is(err, service.ErrUnsupportedMediaType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadURLError), errors.Is(err, service.ErrDownloadURLError), errors.Is(err, service.ErrUploadConfirmationFailed):
		abortWithError(c, http.StatusInternalServerError, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Examination request failed.")
	}
}
