//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"crafthub/pkg/client"
)

const (
	DefaultMongoURI           = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultDatabaseName       = "crafthub"
	ConnectionTimeout         = 10 * time.Second
	DefaultHealthCheckTimeout = 30 * time.Second
)

// TestEnv points the suite at a running server and its database. The
// server must share JWT_SECRET with TEST_JWT_SECRET and should run with a
// short SWEEP_SCHEDULE (for example "@every 1s") for the expiry tests.
// MongoDB must be a replica set (a single node started with --replSet is
// fine): holds run in transactions and fail with 500 on a standalone.
type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	JWTSecret    string
}

func NewTestEnv() *TestEnv {
	serverPort := getEnv("TEST_SERVER_PORT", "8080")
	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    getEnv("TEST_SERVER_URL", fmt.Sprintf("http://localhost:%s", serverPort)),
		JWTSecret:    getEnv("TEST_JWT_SECRET", "integration-secret"),
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *client.APIClient) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanCollections(t)

	api := client.NewAPIClient(e.ServerURL)
	ctx, cancel := context.WithTimeout(context.Background(), DefaultHealthCheckTimeout)
	defer cancel()
	if err := api.WaitForHealthy(ctx, DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("server not healthy: %v", err)
	}

	t.Cleanup(func() {
		mongo.CleanCollections(t)
		mongo.Close(t)
	})
	return mongo, api
}

// As returns a client authenticated as userID with the given role.
func (e *TestEnv) As(t *testing.T, api *client.APIClient, userID, role string) *client.APIClient {
	t.Helper()
	return api.WithToken(Token(t, e.JWTSecret, userID, role))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
