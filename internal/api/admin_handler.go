// internal/api/admin_handler.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/service"
)

// AdminHandler exposes practice-wide views: every stored artifact and the
// user roster.
type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListAllArtifacts godoc
// @Summary List every generated artifact in the practice
// @Description Retrieves all stored plans and diagnoses across clients, newest first.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ArtifactResponse "All artifacts"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /admin/artifacts [get]
func (h *AdminHandler) ListAllArtifacts(c *gin.Context) {
	artifacts, err := h.adminService.ListAllArtifacts(c.Request.Context())
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

// ListUsersByRole godoc
// @Summary List users by role
// @Description Retrieves all users with the given role (client, trainer, or admin).
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string true "Role to filter by" Enums(client, trainer, admin)
// @Success 200 {array} UserResponse "Users"
// @Failure 400 {object} gin.H "Unknown role"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsersByRole(c *gin.Context) {
	role := domain.Role(c.Query("role"))
	if role == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'role' is required.")
		return
	}

	users, err := h.adminService.ListUsersByRole(c.Request.Context(), role)
	if err != nil {
		if !domain.ValidRole(domain.NormalizeRole(role)) {
			abortWithError(c, http.StatusBadRequest, "Unknown role: "+string(role))
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve users.")
		return
	}

	if users == nil {
		c.JSON(http.StatusOK, []UserResponse{})
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}
