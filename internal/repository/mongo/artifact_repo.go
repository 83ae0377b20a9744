// internal/repository/mongo/artifact_repo.go
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

const artifactCollectionName = "artifacts"

// Newest first, ties broken by insertion order. ObjectIDs embed the
// insertion sequence, so a secondary _id sort gives a stable tiebreak for
// artifacts created within the same timestamp granularity.
var artifactSort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// mongoArtifactRepository implements repository.ArtifactRepository.
type mongoArtifactRepository struct {
	collection *mongo.Collection
}

// NewMongoArtifactRepository creates a new Artifact repository backed by MongoDB.
func NewMongoArtifactRepository(db *mongo.Database) repository.ArtifactRepository {
	return &mongoArtifactRepository{
		collection: db.Collection(artifactCollectionName),
	}
}

// Create inserts a new artifact. Artifacts are immutable once created, so
// concurrent saves for the same client simply append independent documents.
func (r *mongoArtifactRepository) Create(ctx context.Context, artifact *domain.Artifact) (primitive.ObjectID, error) {
	if artifact.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("artifact requires a clientId")
	}
	if artifact.Source == "" {
		return primitive.NilObjectID, errors.New("artifact requires a source flag")
	}
	switch artifact.Kind {
	case domain.ArtifactTreatmentPlan:
		if artifact.Plan == nil {
			return primitive.NilObjectID, errors.New("treatment plan artifact requires a plan")
		}
	case domain.ArtifactDiagnosis:
		if artifact.Diagnosis == nil {
			return primitive.NilObjectID, errors.New("diagnosis artifact requires a diagnosis")
		}
	default:
		return primitive.NilObjectID, errors.New("unknown artifact kind")
	}

	artifact.ID = primitive.NewObjectID()
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, artifact)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted artifact ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single artifact by its ID.
func (r *mongoArtifactRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Artifact, error) {
	var artifact domain.Artifact
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&artifact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &artifact, nil
}

// GetByClientID retrieves all artifacts saved under one client, newest first.
func (r *mongoArtifactRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Artifact, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

// GetAll retrieves every artifact across all clients, newest first.
func (r *mongoArtifactRepository) GetAll(ctx context.Context) ([]domain.Artifact, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoArtifactRepository) find(ctx context.Context, filter bson.M) ([]domain.Artifact, error) {
	findOptions := options.Find().SetSort(artifactSort)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var artifacts []domain.Artifact
	if err = cursor.All(ctx, &artifacts); err != nil {
		return nil, err
	}
	// Empty slice when nothing found, not an error.
	return artifacts, nil
}

// EnsureArtifactIndexes creates necessary indexes. Call during startup.
func EnsureArtifactIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: per-client listing, newest first.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Admin listing across clients.
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal; queries fall back to collection scans.
	}
}
