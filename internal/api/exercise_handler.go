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

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

// CreateExerciseRequest defines the expected JSON for creating a library
// exercise. Reused for updates.
type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	BodyRegion  string `json:"bodyRegion" binding:"omitempty"` // e.g. "Lower Back", "Shoulder"
	Difficulty  string `json:"difficulty" binding:"omitempty"` // e.g. "Gentle", "Moderate", "Advanced"
	VideoURL    string `json:"videoUrl" binding:"omitempty,url"`
}

// ExerciseResponse is the DTO for returning library exercise details.
type ExerciseResponse struct {
	ID          string    `json:"id"`
	TrainerID   string    `json:"trainerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BodyRegion  string    `json:"bodyRegion,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.LibraryExercise to its DTO.
func MapExerciseToResponse(ex *domain.LibraryExercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          ex.ID.Hex(),
		TrainerID:   ex.TrainerID.Hex(),
		Name:        ex.Name,
		Description: ex.Description,
		BodyRegion:  ex.BodyRegion,
		Difficulty:  ex.Difficulty,
		VideoURL:    ex.VideoURL,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.LibraryExercise.
func MapExercisesToResponse(exercises []domain.LibraryExercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new library exercise
// @Description Creates a new rehabilitation exercise in the authenticated trainer's library.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(
		c.Request.Context(),
		trainerID,
		req.Name,
		req.Description,
		req.BodyRegion,
		req.Difficulty,
		req.VideoURL,
	)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetTrainerExercises godoc
// @Summary Get the trainer's exercise library
// @Description Retrieves all library exercises created by the authenticated trainer.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ExerciseResponse "List of exercises"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not a trainer)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/exercises [get]
func (h *ExerciseHandler) GetTrainerExercises(c *gin.Context) {
	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.GetExercisesByTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}

	if exercises == nil {
		c.JSON(http.StatusOK, []ExerciseResponse{})
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// UpdateExercise godoc
// @Summary Update a library exercise
// @Description Updates an exercise owned by the authenticated trainer.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise's ObjectID Hex"
// @Param exercise body CreateExerciseRequest true "Updated exercise details"
// @Success 200 {object} ExerciseResponse "Exercise updated"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (exercise owned by another trainer)"
// @Failure 404 {object} gin.H "Exercise not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/exercises/{exerciseId} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format in URL path.")
		return
	}

	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(
		c.Request.Context(),
		trainerID,
		exerciseID,
		req.Name,
		req.Description,
		req.BodyRegion,
		req.Difficulty,
		req.VideoURL,
	)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrExerciseAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Delete a library exercise
// @Description Deletes an exercise owned by the authenticated trainer.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise's ObjectID Hex"
// @Success 200 {object} gin.H "message: Exercise deleted successfully"
// @Failure 400 {object} gin.H "Invalid exercise ID format"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Exercise not found or not owned"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/exercises/{exerciseId} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format in URL path.")
		return
	}

	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), trainerID, exerciseID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exercise deleted successfully"})
}
