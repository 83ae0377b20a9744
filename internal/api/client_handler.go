// internal/api/client_handler.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/service"
)

// ClientHandler exposes the client's own views: their generated plans and
// diagnoses. Appointments live on AppointmentHandler.
type ClientHandler struct {
	artifactService service.ArtifactService
}

func NewClientHandler(artifactService service.ArtifactService) *ClientHandler {
	return &ClientHandler{artifactService: artifactService}
}

// GetMyArtifacts godoc
// @Summary Get the client's own generation history
// @Description Retrieves the authenticated client's stored plans and diagnoses, newest first.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ArtifactResponse "Artifact history"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /client/artifacts [get]
func (h *ClientHandler) GetMyArtifacts(c *gin.Context) {
	clientID, ok := requireUserID(c)
	if !ok {
		return
	}

	artifacts, err := h.artifactService.ListForClient(c.Request.Context(), clientID, domain.RoleClient, clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve artifacts.")
		return
	}

	if artifacts == nil {
		c.JSON(http.StatusOK, []ArtifactResponse{})
		return
	}
	c.JSON(http.StatusOK, MapArtifactsToResponse(artifacts))
}
