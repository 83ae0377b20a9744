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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository for the
// trainer-maintained exercise library.
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new library exercise.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.LibraryExercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and trainer ID are required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.LibraryExercise, error) {
	var exercise domain.LibraryExercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByTrainerID retrieves all exercises created by a specific trainer,
// newest first.
func (r *mongoExerciseRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.LibraryExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"trainerId": trainerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.LibraryExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update modifies an existing exercise. The TrainerID is never changed by
// an update.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.LibraryExercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}

	update := bson.M{
		"$set": bson.M{
			"name":        exercise.Name,
			"description": exercise.Description,
			"bodyRegion":  exercise.BodyRegion,
			"difficulty":  exercise.Difficulty,
			"videoUrl":    exercise.VideoURL,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise, ensuring it belongs to the specified trainer.
// The compound filter prevents a trainer from deleting another trainer's
// entry.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":       id,
		"trainerId": trainerID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("exercise_text_search"),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal.
	}
}
