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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || !domain.ValidRole(user.Role) {
		return primitive.NilObjectID, errors.New("user email, password hash, and a valid role are required")
	}

	user.Role = domain.NormalizeRole(user.Role)
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("user with this email already exists")
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	user.Role = domain.NormalizeRole(user.Role)
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	user.Role = domain.NormalizeRole(user.Role)
	return &user, nil
}

// GetByRole retrieves all users with a given role, newest first. Legacy
// "therapist" documents are matched when querying for trainers.
func (r *mongoUserRepository) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	role = domain.NormalizeRole(role)
	filter := bson.M{"role": role}
	if role == domain.RoleTrainer {
		filter = bson.M{"role": bson.M{"$in": []string{string(domain.RoleTrainer), "therapist"}}}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []domain.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Role = domain.NormalizeRole(users[i].Role)
	}
	return users, nil
}

// AddClientIDToTrainer adds a client's ID to a trainer's ClientIDs array.
func (r *mongoUserRepository) AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	filter := bson.M{"_id": trainerID, "role": domain.RoleTrainer}
	update := bson.M{
		"$addToSet": bson.M{"clientIds": clientID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetClientsByTrainerID retrieves all client users associated with a specific trainer.
func (r *mongoUserRepository) GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	trainer, err := r.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.New("trainer not found")
		}
		return nil, err
	}

	if !trainer.IsTrainer() {
		return nil, errors.New("user is not a trainer")
	}

	if len(trainer.ClientIDs) == 0 {
		return []domain.User{}, nil
	}

	var clients []domain.User
	filter := bson.M{"_id": bson.M{"$in": trainer.ClientIDs}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// SetTrainerForClient sets the TrainerID field for a specific client user.
func (r *mongoUserRepository) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	filter := bson.M{"_id": clientID, "role": domain.RoleClient}
	update := bson.M{
		"$set": bson.M{
			"trainerId": trainerID,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index().SetSparse(true), // Not all users have trainerId
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is non-fatal at startup; queries still work.
	}
}
