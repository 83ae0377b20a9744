// internal/api/plan_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/assessment"
	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/service"
)

// PlanHandler exposes the assessment-to-plan pipeline and artifact history.
type PlanHandler struct {
	planService     service.PlanService
	artifactService service.ArtifactService
}

func NewPlanHandler(planService service.PlanService, artifactService service.ArtifactService) *PlanHandler {
	return &PlanHandler{
		planService:     planService,
		artifactService: artifactService,
	}
}

// --- DTOs ---

// GeneratePlanRequest carries the intake form grouped by section name. Field
// values may be strings or lists of strings; anything else is flattened.
type GeneratePlanRequest struct {
	Sections map[string]map[string]any `json:"sections" binding:"required"`
}

// ArtifactResponse is the DTO for one stored generation outcome.
type ArtifactResponse struct {
	ID        string                  `json:"id"`
	ClientID  string                  `json:"clientId"`
	Kind      domain.ArtifactKind     `json:"kind"`
	Plan      *domain.TreatmentPlan   `json:"plan,omitempty"`
	Diagnosis *domain.DiagnosisResult `json:"diagnosis,omitempty"`
	Source    domain.GenerationSource `json:"source"`
	Warning   string                  `json:"warning,omitempty"`
	Summary   string                  `json:"summary,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// PlanGenerationResponse is returned from a generation run.
type PlanGenerationResponse struct {
	Plan     *domain.TreatmentPlan   `json:"plan"`
	Source   domain.GenerationSource `json:"source"`
	Warning  string                  `json:"warning,omitempty"`
	Artifact ArtifactResponse        `json:"artifact"`
}

// MapArtifactToResponse converts a domain Artifact to its DTO.
func MapArtifactToResponse(a *domain.Artifact) ArtifactResponse {
	if a == nil {
		return ArtifactResponse{}
	}
	return ArtifactResponse{
		ID:        a.ID.Hex(),
		ClientID:  a.ClientID.Hex(),
		Kind:      a.Kind,
		Plan:      a.Plan,
		Diagnosis: a.Diagnosis,
		Source:    a.Source,
		Warning:   a.Warning,
		Summary:   a.Summary,
		CreatedAt: a.CreatedAt,
	}
}

// MapArtifactsToResponse converts a slice of domain.Artifact.
func MapArtifactsToResponse(artifacts []domain.Artifact) []ArtifactResponse {
	responses := make([]ArtifactResponse, len(artifacts))
	for i := range artifacts {
		responses[i] = MapArtifactToResponse(&artifacts[i])
	}
	return responses
}

// --- Handler Methods ---

// GeneratePlanForClient godoc
// @Summary Generate a treatment plan from an intake assessment
// @Description Aggregates the submitted intake sections, runs the generation pipeline, and stores the outcome. Always returns a plan; the source field says whether it was generated or a fallback.
// @Tags Trainer Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Param intake body GeneratePlanRequest true "Intake form sections"
// @Success 201 {object} PlanGenerationResponse "Plan generated and stored"
// @Failure 400 {object} gin.H "Invalid or incomplete intake data"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (client not managed by this trainer)"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/clients/{clientId}/plans [post]
func (h *PlanHandler) GeneratePlanForClient(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format in URL path.")
		return
	}

	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	outcome, err := h.planService.GeneratePlan(c.Request.Context(), trainerID, clientID, req.Sections)
	if err != nil {
		var vErr *assessment.ValidationError
		if errors.As(err, &vErr) {
			abortWithError(c, http.StatusBadRequest, vErr.Error())
		} else if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotManaged) || errors.Is(err, service.ErrClientNotRole) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate treatment plan.")
		}
		return
	}

	c.JSON(http.StatusCreated, PlanGenerationResponse{
		Plan:     outcome.Plan,
		Source:   outcome.Source,
		Warning:  outcome.Warning,
		Artifact: MapArtifactToResponse(outcome.Artifact),
	})
}

// GetClientArtifacts godoc
// @Summary Get generation history for a client
// @Description Retrieves stored plans and diagnoses for a client, newest first. Trainers see clients they manage; clients see only their own history.
// @Tags Artifacts
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Success 200 {array} ArtifactResponse "Artifact history"
// @Failure 400 {object} gin.H "Invalid client ID format"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /clients/{clientId}/artifacts [get]
func (h *PlanHandler) GetClientArtifacts(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format in URL path.")
		return
	}

	requesterID, ok := requireUserID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}

	artifacts, err := h.artifactService.ListForClient(c.Request.Context(), requesterID, role, clientID)
	if err != nil {
		if errors.Is(err, service.ErrArtifactAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve artifacts.")
		}
		return
	}

	if artifacts == nil {
		c.JSON(http.StatusOK, []ArtifactResponse{})
		return
	}
	c.JSON(http.StatusOK, MapArtifactsToResponse(artifacts))
}

// GetArtifactByID godoc
// @Summary Get one stored artifact
// @Description Retrieves a single plan or diagnosis record by ID, subject to role-based access.
// @Tags Artifacts
// @Produce json
// @Security BearerAuth
// @Param artifactId path string true "Artifact's ObjectID Hex"
// @Success 200 {object} ArtifactResponse "Artifact"
// @Failure 400 {object} gin.H "Invalid artifact ID format"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Artifact not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /artifacts/{artifactId} [get]
func (h *PlanHandler) GetArtifactByID(c *gin.Context) {
	artifactID, err := primitive.ObjectIDFromHex(c.Param("artifactId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid artifact ID format in URL path.")
		return
	}

	requesterID, ok := requireUserID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}

	artifact, err := h.artifactService.GetByID(c.Request.Context(), requesterID, role, artifactID)
	if err != nil {
		if errors.Is(err, service.ErrArtifactNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrArtifactAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve artifact.")
		}
		return
	}

	c.JSON(http.StatusOK, MapArtifactToResponse(artifact))
}
