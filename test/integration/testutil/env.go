//go:build integration

package testutil

import (
	"os"
	"testing"
	"time"
)

const DefaultHealthCheckTimeout = 30 * time.Second

// TestEnv points at the three services and the database they share.
type TestEnv struct {
	MongoURI     string
	DatabaseName string
	EquipmentURL string
	RentalURL    string
	ExternalURL  string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		EquipmentURL: getEnv("TEST_EQUIPMENT_URL", "http://localhost:8081"),
		RentalURL:    getEnv("TEST_RENTAL_URL", "http://localhost:8080"),
		ExternalURL:  getEnv("TEST_EXTERNAL_URL", "http://localhost:8082"),
	}
}

type Clients struct {
	Equipment *Client
	Rental    *Client
	External  *Client
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Clients) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanData(t)

	clients := &Clients{
		Equipment: NewClient(e.EquipmentURL),
		Rental:    NewClient(e.RentalURL),
		External:  NewClient(e.ExternalURL),
	}
	for _, c := range []*Client{clients.Equipment, clients.Rental, clients.External} {
		c.WaitForHealthy(t, DefaultHealthCheckTimeout)
	}

	return mongo, clients
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanData(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
