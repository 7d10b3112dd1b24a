package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	workshopserrors "crafthub/internal/workshops/errors"
	"crafthub/pkg/config"
	mongotx "crafthub/pkg/db/mongo"
	"crafthub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CommentsCollectionName = "Comments"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	FindByWorkshop(ctx context.Context, workshopID string, limit int, offset int64) ([]*model.Comment, error)
	CountByWorkshop(ctx context.Context, workshopID string) (int64, error)
	UpdateText(ctx context.Context, id string, text string) (*model.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByWorkshop(ctx context.Context, workshopID string) (int64, error)
}

type mongoCommentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCommentRepository(cfg *config.Config) CommentRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoCommentRepository{
		cfg:        cfg,
		collection: db.Collection(CommentsCollectionName),
	}
}

func (r *mongoCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	c.CreatedAt = now
	c.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCommentRepository) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", workshopserrors.ErrInvalidID, id)
	}

	var c model.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", workshopserrors.ErrCommentNotFound, id)
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return &c, nil
}

func (r *mongoCommentRepository) FindByWorkshop(ctx context.Context, workshopID string, limit int, offset int64) ([]*model.Comment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"workshop_id": workshopID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments for workshop [%s]: %w", workshopID, err)
	}
	defer cursor.Close(ctx)

	var comments []*model.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *mongoCommentRepository) CountByWorkshop(ctx context.Context, workshopID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"workshop_id": workshopID})
	if err != nil {
		return 0, fmt.Errorf("failed to count comments for workshop [%s]: %w", workshopID, err)
	}
	return count, nil
}

func (r *mongoCommentRepository) UpdateText(ctx context.Context, id string, text string) (*model.Comment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", workshopserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"text":       text,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c model.Comment
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", workshopserrors.ErrCommentNotFound, id)
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return &c, nil
}

func (r *mongoCommentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", workshopserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", workshopserrors.ErrCommentNotFound, id)
	}
	return nil
}

func (r *mongoCommentRepository) DeleteByWorkshop(ctx context.Context, workshopID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"workshop_id": workshopID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments for workshop [%s]: %w", workshopID, err)
	}
	return result.DeletedCount, nil
}
