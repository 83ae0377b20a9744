// internal/repository/mongo/appointment_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"physioflow/recovery-app/internal/domain"
	"physioflow/recovery-app/internal/repository"
)

const appointmentCollectionName = "appointments"

// mongoAppointmentRepository implements repository.AppointmentRepository.
type mongoAppointmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAppointmentRepository creates a new Appointment repository.
func NewMongoAppointmentRepository(db *mongo.Database) repository.AppointmentRepository {
	return &mongoAppointmentRepository{
		collection: db.Collection(appointmentCollectionName),
	}
}

// Create inserts a new appointment.
func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *domain.Appointment) (primitive.ObjectID, error) {
	if appt.ClientID == primitive.NilObjectID || appt.ScheduledAt.IsZero() {
		return primitive.NilObjectID, errors.New("appointment requires clientId and scheduledAt")
	}
	if appt.DurationMinutes <= 0 {
		appt.DurationMinutes = 60
	}
	if appt.Status == "" {
		appt.Status = domain.AppointmentScheduled
	}

	appt.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted appointment ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single appointment.
func (r *mongoAppointmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Appointment, error) {
	var appt domain.Appointment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

// GetByClientID retrieves a client's appointments, soonest first.
func (r *mongoAppointmentRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Appointment, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

// GetByTrainerID retrieves a trainer's appointments, soonest first.
func (r *mongoAppointmentRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Appointment, error) {
	return r.find(ctx, bson.M{"trainerId": trainerID})
}

func (r *mongoAppointmentRepository) find(ctx context.Context, filter bson.M) ([]domain.Appointment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appts []domain.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// UpdateStatus transitions an appointment's status and optionally replaces
// its notes.
func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AppointmentStatus, notes string) error {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}
	if notes != "" {
		set["notes"] = notes
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAppointmentIndexes creates necessary indexes. Call during startup.
func EnsureAppointmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "scheduledAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "scheduledAt", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal.
	}
}
