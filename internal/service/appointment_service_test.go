package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/repository"
)

// memAppointmentRepo is an in-memory AppointmentRepository.
type memAppointmentRepo struct {
	appointments map[primitive.ObjectID]*domain.Appointment
}

func (r *memAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) (primitive.ObjectID, error) {
	if r.appointments == nil {
		r.appointments = map[primitive.ObjectID]*domain.Appointment{}
	}
	id := primitive.NewObjectID()
	stored := *appt
	stored.ID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.appointments[id] = &stored
	return id, nil
}

func (r *memAppointmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *memAppointmentRepo) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range r.appointments {
		if a.ClientID == clientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range r.appointments {
		if a.TrainerID != nil && *a.TrainerID == trainerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AppointmentStatus, notes string) error {
	a, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	if notes != "" {
		a.Notes = notes
	}
	a.UpdatedAt = time.Now()
	return nil
}

func newAppointmentFixture(t *testing.T) (AppointmentService, primitive.ObjectID, primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	userRepo := &memUserRepo{}
	trainerID, clientID, otherClientID := seedUsers(t, userRepo)
	svc := NewAppointmentService(&memAppointmentRepo{}, userRepo)
	return svc, trainerID, clientID, otherClientID
}

func TestAppointmentClientBooksOwnSession(t *testing.T) {
	svc, trainerID, clientID, _ := newAppointmentFixture(t)
	ctx := context.Background()
	startsAt := time.Now().Add(48 * time.Hour)

	appt, err := svc.Book(ctx, clientID, startsAt, 45, "first session")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if appt.ClientID != clientID {
		t.Errorf("clientID = %v, want %v", appt.ClientID, clientID)
	}
	if appt.TrainerID == nil || *appt.TrainerID != trainerID {
		t.Errorf("booking should attach the client's assigned trainer, got %v", appt.TrainerID)
	}
	if appt.Status != domain.AppointmentScheduled {
		t.Errorf("status = %q", appt.Status)
	}

	// The trainer sees the client-booked session in their own list.
	forTrainer, err := svc.GetForTrainer(ctx, trainerID)
	if err != nil || len(forTrainer) != 1 {
		t.Fatalf("GetForTrainer: %v (%d appointments)", err, len(forTrainer))
	}
}

func TestAppointmentBookingWithoutAssignedTrainer(t *testing.T) {
	svc, _, _, otherClientID := newAppointmentFixture(t)
	ctx := context.Background()

	// otherClientID has no trainer yet; the booking stays unassigned.
	appt, err := svc.Book(ctx, otherClientID, time.Now().Add(24*time.Hour), 30, "")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if appt.TrainerID != nil {
		t.Errorf("expected unassigned booking, got trainer %v", appt.TrainerID)
	}
}

func TestAppointmentBookingRejectsPastTime(t *testing.T) {
	svc, trainerID, clientID, _ := newAppointmentFixture(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	if _, err := svc.Book(ctx, clientID, past, 30, ""); !errors.Is(err, ErrAppointmentInPast) {
		t.Errorf("Book: expected ErrAppointmentInPast, got %v", err)
	}
	if _, err := svc.Schedule(ctx, trainerID, clientID, past, 30, ""); !errors.Is(err, ErrAppointmentInPast) {
		t.Errorf("Schedule: expected ErrAppointmentInPast, got %v", err)
	}
}

func TestAppointmentStatusUpdateOwnership(t *testing.T) {
	svc, trainerID, clientID, _ := newAppointmentFixture(t)
	ctx := context.Background()

	appt, err := svc.Schedule(ctx, trainerID, clientID, time.Now().Add(time.Hour), 60, "")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, primitive.NewObjectID(), appt.ID, domain.AppointmentCompleted, ""); !errors.Is(err, ErrAppointmentAccessDenied) {
		t.Errorf("expected ErrAppointmentAccessDenied for foreign trainer, got %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, trainerID, appt.ID, domain.AppointmentCompleted, "full range restored")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.AppointmentCompleted || updated.Notes != "full range restored" {
		t.Errorf("unexpected update result: %+v", updated)
	}
}
