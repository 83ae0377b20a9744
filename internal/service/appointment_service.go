package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentAccessDenied = errors.New("access denied to modify this appointment")
	ErrAppointmentInPast       = errors.New("appointment time is in the past")
)

// AppointmentService manages therapy session scheduling. Clients book their
// own sessions; trainers can book for managed clients and own the status
// lifecycle.
type AppointmentService interface {
	Schedule(ctx context.Context, trainerID, clientID primitive.ObjectID, startsAt time.Time, durationMinutes int, notes string) (*domain.Appointment, error)
	Book(ctx context.Context, clientID primitive.ObjectID, startsAt time.Time, durationMinutes int, notes string) (*domain.Appointment, error)
	GetForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Appointment, error)
	GetForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, trainerID, appointmentID primitive.ObjectID, status domain.AppointmentStatus, notes string) (*domain.Appointment, error)
}

// appointmentService implements the AppointmentService interface.
type appointmentService struct {
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
}

// NewAppointmentService creates a new instance of appointmentService.
func NewAppointmentService(appointmentRepo repository.AppointmentRepository, userRepo repository.UserRepository) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
	}
}

// Schedule books a session for a managed client.
func (s *appointmentService) Schedule(ctx context.Context, trainerID, clientID primitive.ObjectID, startsAt time.Time, durationMinutes int, notes string) (*domain.Appointment, error) {
	if trainerID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and client ID are required")
	}
	if startsAt.Before(time.Now()) {
		return nil, ErrAppointmentInPast
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return nil, ErrClientNotManaged
	}

	appt := &domain.Appointment{
		TrainerID:       &trainerID,
		ClientID:        clientID,
		ScheduledAt:     startsAt,
		DurationMinutes: durationMinutes,
		Status:          domain.AppointmentScheduled,
		Notes:           notes,
		// ID, CreatedAt, UpdatedAt set by repository
	}

	apptID, err := s.appointmentRepo.Create(ctx, appt)
	if err != nil {
		return nil, err
	}
	appt.ID = apptID
	return appt, nil
}

// Book creates an appointment for the client themselves. The session is
// attached to the client's assigned trainer when they have one; otherwise it
// stays unassigned until the practice picks it up.
func (s *appointmentService) Book(ctx context.Context, clientID primitive.ObjectID, startsAt time.Time, durationMinutes int, notes string) (*domain.Appointment, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	if startsAt.Before(time.Now()) {
		return nil, ErrAppointmentInPast
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	appt := &domain.Appointment{
		TrainerID:       client.TrainerID,
		ClientID:        clientID,
		ScheduledAt:     startsAt,
		DurationMinutes: durationMinutes,
		Status:          domain.AppointmentScheduled,
		Notes:           notes,
	}

	apptID, err := s.appointmentRepo.Create(ctx, appt)
	if err != nil {
		return nil, err
	}
	appt.ID = apptID
	return appt, nil
}

// GetForClient lists the client's own appointments, soonest first.
func (s *appointmentService) GetForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Appointment, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.appointmentRepo.GetByClientID(ctx, clientID)
}

// GetForTrainer lists the trainer's appointments across all clients.
func (s *appointmentService) GetForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Appointment, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	return s.appointmentRepo.GetByTrainerID(ctx, trainerID)
}

// UpdateStatus moves an appointment to completed or cancelled, optionally
// replacing the session notes.
func (s *appointmentService) UpdateStatus(ctx context.Context, trainerID, appointmentID primitive.ObjectID, status domain.AppointmentStatus, notes string) (*domain.Appointment, error) {
	if trainerID == primitive.NilObjectID || appointmentID == primitive.NilObjectID {
		return nil, errors.New("trainer ID and appointment ID are required")
	}
	if !domain.ValidAppointmentStatus(status) {
		return nil, errors.New("invalid appointment status")
	}

	appt, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if appt.TrainerID == nil || *appt.TrainerID != trainerID {
		return nil, ErrAppointmentAccessDenied
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, status, notes); err != nil {
		return nil, err
	}

	appt.Status = status
	if notes != "" {
		appt.Notes = notes
	}
	return appt, nil
}
