// internal/repository/mongo/media_repo.go
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

const mediaCollectionName = "media_uploads"

// mongoMediaUploadRepository implements repository.MediaUploadRepository.
type mongoMediaUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoMediaUploadRepository creates a new MediaUpload repository.
func NewMongoMediaUploadRepository(db *mongo.Database) repository.MediaUploadRepository {
	return &mongoMediaUploadRepository{
		collection: db.Collection(mediaCollectionName),
	}
}

// Create records metadata for a completed upload.
func (r *mongoMediaUploadRepository) Create(ctx context.Context, upload *domain.MediaUpload) (primitive.ObjectID, error) {
	if upload.ClientID == primitive.NilObjectID || upload.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("media upload requires clientId and object key")
	}

	upload.ID = primitive.NewObjectID()
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, upload)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted upload ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single upload record.
func (r *mongoMediaUploadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MediaUpload, error) {
	var upload domain.MediaUpload
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&upload)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &upload, nil
}

// GetByIDs retrieves the given upload records. Missing IDs are simply
// absent from the result; the caller decides whether that matters.
func (r *mongoMediaUploadRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.MediaUpload, error) {
	if len(ids) == 0 {
		return []domain.MediaUpload{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var uploads []domain.MediaUpload
	if err = cursor.All(ctx, &uploads); err != nil {
		return nil, err
	}
	return uploads, nil
}

// GetByClientID retrieves a client's uploads, newest first.
func (r *mongoMediaUploadRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.MediaUpload, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var uploads []domain.MediaUpload
	if err = cursor.All(ctx, &uploads); err != nil {
		return nil, err
	}
	return uploads, nil
}

// EnsureMediaUploadIndexes creates necessary indexes. Call during startup.
func EnsureMediaUploadIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "uploadedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal.
	}
}
