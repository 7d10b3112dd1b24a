//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	bookingrepo "crafthub/internal/bookings/repository"
	workshoprepo "crafthub/internal/workshops/repository"
	"crafthub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHelper reads and nudges state behind the API so tests can observe
// seat counts and move hold deadlines without waiting for real time.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   c,
		Database: c.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanCollections empties the domain collections but keeps their
// validators and indexes from the migration job.
func (m *MongoHelper) CleanCollections(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range []string{
		workshoprepo.CollectionName,
		workshoprepo.CommentsCollectionName,
		bookingrepo.CollectionName,
	} {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) Places(t *testing.T, workshopID string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var w model.Workshop
	if err := m.Database.Collection(workshoprepo.CollectionName).FindOne(ctx, bson.M{"_id": objectID(t, workshopID)}).Decode(&w); err != nil {
		t.Fatalf("failed to load workshop %s: %v", workshopID, err)
	}
	return w.Places
}

func (m *MongoHelper) Booking(t *testing.T, bookingID string) *model.Booking {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var b model.Booking
	if err := m.Database.Collection(bookingrepo.CollectionName).FindOne(ctx, bson.M{"_id": objectID(t, bookingID)}).Decode(&b); err != nil {
		t.Fatalf("failed to load booking %s: %v", bookingID, err)
	}
	return &b
}

// Backdate moves a hold so that its deadline passed ago before now.
func (m *MongoHelper) Backdate(t *testing.T, bookingID string, ago time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	expiresAt := time.Now().UTC().Add(-ago)
	update := bson.M{"$set": bson.M{
		"created_at": expiresAt.Add(-5 * time.Minute),
		"expires_at": expiresAt,
	}}
	res, err := m.Database.Collection(bookingrepo.CollectionName).UpdateByID(ctx, objectID(t, bookingID), update)
	if err != nil {
		t.Fatalf("failed to backdate booking %s: %v", bookingID, err)
	}
	if res.MatchedCount != 1 {
		t.Fatalf("booking %s not found", bookingID)
	}
}

func objectID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		t.Fatalf("invalid object id %q: %v", hex, err)
	}
	return oid
}
