// internal/domain/appointment.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStatus tracks the lifecycle of a scheduled session.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// ValidAppointmentStatus reports whether s is a known lifecycle state.
func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment represents one scheduled session between a client and a
// trainer.
type Appointment struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID        primitive.ObjectID  `bson:"clientId" json:"clientId"`
	TrainerID       *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"` // May be unassigned at booking time
	ScheduledAt     time.Time           `bson:"scheduledAt" json:"scheduledAt"`
	DurationMinutes int                 `bson:"durationMinutes" json:"durationMinutes"`
	Status          AppointmentStatus   `bson:"status" json:"status"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
