package db

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store owns the Mongo client and the four collections. It is constructed
// once in main and injected into every engine so tests can substitute a
// fake store.
type Store struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Plans    *mongo.Collection
	Requests *mongo.Collection
	Reviews  *mongo.Collection
}

func Connect(ctx context.Context) (*Store, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "tripdb"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	database := client.Database(dbName)
	s := &Store{
		Client:   client,
		Users:    database.Collection("users"),
		Plans:    database.Collection("travelplans"),
		Requests: database.Collection("travelrequests"),
		Reviews:  database.Collection("reviews"),
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the uniqueness backstops the application-level
// checks rely on: duplicate checks inside a transaction are not race-free
// across transactions, the unique indexes are.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// One review per (plan, reviewer, reviewed) triple.
	_, err = s.Reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "travelPlanId", Value: 1},
			{Key: "reviewerId", Value: 1},
			{Key: "reviewedId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// At most one PENDING request per (plan, requester) pair.
	_, err = s.Requests.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "planid", Value: 1},
			{Key: "requesterid", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": "PENDING"}),
	})
	return err
}

// WithTransaction runs fn inside a single Mongo transaction. The context
// passed to fn must be used for every store call inside it.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
