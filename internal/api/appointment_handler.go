// internal/api/appointment_handler.go
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

type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// --- DTOs ---

type ScheduleAppointmentRequest struct {
	ClientID        string    `json:"clientId" binding:"required"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"` // ISO8601, e.g. "2026-09-15T10:00:00Z"
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=15,max=240"`
	Notes           string    `json:"notes"`
}

type BookAppointmentRequest struct {
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=15,max=240"`
	Notes           string    `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status domain.AppointmentStatus `json:"status" binding:"required,oneof=scheduled completed cancelled"`
	Notes  string                   `json:"notes"`
}

type AppointmentResponse struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"clientId"`
	TrainerID       *string   `json:"trainerId,omitempty"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func MapAppointmentToResponse(a *domain.Appointment) AppointmentResponse {
	if a == nil {
		return AppointmentResponse{}
	}
	resp := AppointmentResponse{
		ID:              a.ID.Hex(),
		ClientID:        a.ClientID.Hex(),
		ScheduledAt:     a.ScheduledAt,
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.TrainerID != nil && *a.TrainerID != primitive.NilObjectID {
		hex := (*a.TrainerID).Hex()
		resp.TrainerID = &hex
	}
	return resp
}

func MapAppointmentsToResponse(appointments []domain.Appointment) []AppointmentResponse {
	responses := make([]AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = MapAppointmentToResponse(&appointments[i])
	}
	return responses
}

// --- Handler Methods ---

// ScheduleAppointment godoc
// @Summary Schedule a session with a managed client
// @Description Books a new appointment between the authenticated trainer and one of their clients.
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param appointmentRequest body ScheduleAppointmentRequest true "Appointment details"
// @Success 201 {object} AppointmentResponse "Appointment scheduled"
// @Failure 400 {object} gin.H "Invalid input or time in the past"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (client not managed)"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/appointments [post]
func (h *AppointmentHandler) ScheduleAppointment(c *gin.Context) {
	var req ScheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	appt, err := h.appointmentService.Schedule(c.Request.Context(), trainerID, clientID, req.ScheduledAt, req.DurationMinutes, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotManaged) || errors.Is(err, service.ErrClientNotRole) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrAppointmentInPast) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to schedule appointment.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapAppointmentToResponse(appt))
}

// BookAppointment godoc
// @Summary Book a session as a client
// @Description Books a new appointment for the authenticated client. The session is attached to the client's assigned trainer, or left unassigned if they have none yet.
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookingRequest body BookAppointmentRequest true "Appointment details"
// @Success 201 {object} AppointmentResponse "Appointment booked"
// @Failure 400 {object} gin.H "Invalid input or time in the past"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /client/appointments [post]
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	clientID, ok := requireUserID(c)
	if !ok {
		return
	}

	appt, err := h.appointmentService.Book(c.Request.Context(), clientID, req.ScheduledAt, req.DurationMinutes, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrAppointmentInPast) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrClientNotFound) || errors.Is(err, service.ErrClientNotRole) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to book appointment.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapAppointmentToResponse(appt))
}

// GetTrainerAppointments godoc
// @Summary Get the trainer's appointments
// @Description Retrieves all appointments booked by the authenticated trainer, soonest first.
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AppointmentResponse "List of appointments"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/appointments [get]
func (h *AppointmentHandler) GetTrainerAppointments(c *gin.Context) {
	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	appointments, err := h.appointmentService.GetForTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments.")
		return
	}

	if appointments == nil {
		c.JSON(http.StatusOK, []AppointmentResponse{})
		return
	}
	c.JSON(http.StatusOK, MapAppointmentsToResponse(appointments))
}

// GetMyAppointments godoc
// @Summary Get the client's own appointments
// @Description Retrieves the authenticated client's appointments, soonest first.
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AppointmentResponse "List of appointments"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /client/appointments [get]
func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	clientID, ok := requireUserID(c)
	if !ok {
		return
	}

	appointments, err := h.appointmentService.GetForClient(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments.")
		return
	}

	if appointments == nil {
		c.JSON(http.StatusOK, []AppointmentResponse{})
		return
	}
	c.JSON(http.StatusOK, MapAppointmentsToResponse(appointments))
}

// UpdateAppointmentStatus godoc
// @Summary Update an appointment's status
// @Description Marks an appointment as completed or cancelled, optionally replacing the session notes.
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param appointmentId path string true "Appointment's ObjectID Hex"
// @Param statusRequest body UpdateAppointmentStatusRequest true "New status"
// @Success 200 {object} AppointmentResponse "Appointment updated"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (appointment owned by another trainer)"
// @Failure 404 {object} gin.H "Appointment not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainer/appointments/{appointmentId} [patch]
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID, err := primitive.ObjectIDFromHex(c.Param("appointmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid appointment ID format in URL path.")
		return
	}

	var req UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := requireUserID(c)
	if !ok {
		return
	}

	appt, err := h.appointmentService.UpdateStatus(c.Request.Context(), trainerID, appointmentID, req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrAppointmentAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update appointment.")
		}
		return
	}

	c.JSON(http.StatusOK, MapAppointmentToResponse(appt))
}
