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
	CollectionName = "Workshops"
)

type mongoWorkshopRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type WorkshopRepository interface {
	Create(ctx context.Context, w *model.Workshop) error
	FindByID(ctx context.Context, id string) (*model.Workshop, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Workshop, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Workshop, error)
	FindByArtisan(ctx context.Context, artisanID string, limit int, offset int64) ([]*model.Workshop, error)
	Update(ctx context.Context, id string, w *model.Workshop) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByArtisan(ctx context.Context, artisanID string) (int64, error)

	// ReserveSeats takes n seats in a single conditional update so that
	// places can never go negative under concurrent holds.
	ReserveSeats(ctx context.Context, id string, n int) error
	ReleaseSeats(ctx context.Context, id string, n int) error
	AdjustPlaces(ctx context.Context, id string, delta int) (*model.Workshop, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoWorkshopRepository(cfg *config.Config) WorkshopRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoWorkshopRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoWorkshopRepository) objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", workshopserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoWorkshopRepository) Create(ctx context.Context, w *model.Workshop) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	w.CreatedAt = now
	w.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, w)
	if err != nil {
		return fmt.Errorf("failed to create workshop: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		w.ID = oid.Hex()
	}

	return nil
}

func (r *mongoWorkshopRepository) FindByID(ctx context.Context, id string) (*model.Workshop, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := r.objectID(id)
	if err != nil {
		return nil, err
	}

	var w model.Workshop
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", workshopserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find workshop: %w", err)
	}
	return &w, nil
}

func (r *mongoWorkshopRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Workshop, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query workshops by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var workshops []*model.Workshop
	if err := cursor.All(ctx, &workshops); err != nil {
		return nil, fmt.Errorf("failed to decode workshops: %w", err)
	}
	return workshops, nil
}

func (r *mongoWorkshopRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Workshop, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *mongoWorkshopRepository) FindByArtisan(ctx context.Context, artisanID string, limit int, offset int64) ([]*model.Workshop, error) {
	return r.find(ctx, bson.M{"artisan_id": artisanID}, limit, offset)
}

func (r *mongoWorkshopRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Workshop, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query workshops: %w", err)
	}
	defer cursor.Close(ctx)

	var workshops []*model.Workshop
	if err = cursor.All(ctx, &workshops); err != nil {
		return nil, fmt.Errorf("failed to decode workshops: %w", err)
	}

	return workshops, nil
}

// Update rewrites the descriptive fields only; places belong to the seat
// operations below.
func (r *mongoWorkshopRepository) Update(ctx context.Context, id string, w *model.Workshop) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := r.objectID(id)
	if err != nil {
		return err
	}

	w.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"title":        w.Title,
			"description":  w.Description,
			"price":        w.Price,
			"category":     w.Category,
			"location":     w.Location,
			"date":         w.Date,
			"booking_time": w.BookingTime,
			"duration":     w.Duration,
			"updated_at":   w.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update workshop: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", workshopserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoWorkshopRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := r.objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete workshop: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", workshopserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoWorkshopRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count workshops: %w", err)
	}
	return count, nil
}

func (r *mongoWorkshopRepository) CountByArtisan(ctx context.Context, artisanID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"artisan_id": artisanID})
	if err != nil {
		return 0, fmt.Errorf("failed to count workshops for artisan [%s]: %w", artisanID, err)
	}
	return count, nil
}

func (r *mongoWorkshopRepository) ReserveSeats(ctx context.Context, id string, n int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := r.objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "places": bson.M{"$gte": n}}
	update := bson.M{
		"$inc": bson.M{"places": -n},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	return r.capacityFailure(ctx, oid, id, n)
}

// capacityFailure tells a missing workshop apart from one that is too full.
func (r *mongoWorkshopRepository) capacityFailure(ctx context.Context, oid primitive.ObjectID, id string, requested int) error {
	var current struct {
		Places int `bson:"places"`
	}
	opts := options.FindOne().SetProjection(bson.M{"places": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&current)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s", workshopserrors.ErrNotFound, id)
		}
		return fmt.Errorf("failed to read workshop capacity: %w", err)
	}
	return &workshopserrors.CapacityError{WorkshopID: id, Requested: requested, Available: current.Places}
}

func (r *mongoWorkshopRepository) ReleaseSeats(ctx context.Context, id string, n int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := r.objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"places": n},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", workshopserrors.ErrNotFound, id)
	}
	return nil
}

// AdjustPlaces adds delta to places, refusing any change that would leave
// the counter negative.
func (r *mongoWorkshopRepository) AdjustPlaces(ctx context.Context, id string, delta int) (*model.Workshop, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := r.objectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["places"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"places": delta},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var w model.Workshop
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&w)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to adjust workshop places: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("failed to check workshop existence: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", workshopserrors.ErrNotFound, id)
	}
	return nil, fmt.Errorf("%w: %s", workshopserrors.ErrNegativePlaces, id)
}

func (r *mongoWorkshopRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
