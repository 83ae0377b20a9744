// internal/api/trainer_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/service"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
	}
}

// --- DTOs for Client Management ---
type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// --- Handler Methods for Client Management ---

// AddClientByEmail godoc
// @Summary Add a client to the trainer's roster by email
// @Description Associates an existing client user with the authenticated trainer.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse "Client successfully added/associated"
// @Failure 400 {object} gin.H "Invalid input (validation error, or invalid trainer ID in token)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not a trainer, or client already has a trainer, or user is not a client)"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/clients [post]
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), trainerID, req.ClientEmail)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotRole) || errors.Is(err, service.ErrClientAlreadyAssigned) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary Get the trainer's managed clients
// @Description Retrieves a list of clients currently managed by the authenticated trainer.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse "List of managed clients"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	clients, err := h.trainerService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed clients.")
		return
	}

	if clients == nil {
		c.JSON(http.StatusOK, []UserResponse{}) // Return empty JSON array, not null
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// MapUsersToResponse converts a slice of domain.User to UserResponse DTOs.
func MapUsersToResponse(users []domain.User) []UserResponse {
	userResponses := make([]UserResponse, len(users))
	for i, u := range users {
		userResponses[i] = MapUserToResponse(&u)
	}
	return userResponses
}

// requireUserID pulls the authenticated user's ObjectID out of the request
// context, aborting with the right status when it is missing or malformed.
func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}
