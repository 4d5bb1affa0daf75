package warnings

import (
	"context"
	"fmt"
	"time"

	"github.com/sumezulike/Referee/pkg/database"
	"github.com/sumezulike/Referee/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// warningsCollection is the MongoDB collection holding one document per warning
const warningsCollection = "warnings"

// MongoStore is the MongoDB-backed Store implementation
type MongoStore struct {
	db  *database.Database
	now func() time.Time
}

// NewMongoStore creates a Store backed by the given database connection
func NewMongoStore(db *database.Database) *MongoStore {
	return &MongoStore{
		db:  db,
		now: time.Now,
	}
}

func (s *MongoStore) collection() (*mongo.Collection, error) {
	if !s.db.Connected() {
		return nil, fmt.Errorf("database not connected")
	}
	col := s.db.GetCollection(warningsCollection)
	if col == nil {
		return nil, fmt.Errorf("collection %q not available", warningsCollection)
	}
	return col, nil
}

// Put persists a new warning
func (s *MongoStore) Put(ctx context.Context, w *models.Warning) error {
	col, err := s.collection()
	if err != nil {
		return err
	}

	_, err = col.InsertOne(ctx, w)
	return err
}

// List returns every warning recorded for a user
func (s *MongoStore) List(ctx context.Context, userID string) ([]*models.Warning, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

// ListActive returns the unexpired warnings for a user
func (s *MongoStore) ListActive(ctx context.Context, userID string) ([]*models.Warning, error) {
	return s.find(ctx, bson.M{
		"user_id":         userID,
		"expiration_time": bson.M{"$gt": s.now()},
	})
}

// ListAll returns all warnings grouped by user
func (s *MongoStore) ListAll(ctx context.Context) (map[string][]*models.Warning, error) {
	warnings, err := s.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return groupByUser(warnings), nil
}

// ListAllActive returns all unexpired warnings grouped by user
func (s *MongoStore) ListAllActive(ctx context.Context) (map[string][]*models.Warning, error) {
	warnings, err := s.find(ctx, bson.M{
		"expiration_time": bson.M{"$gt": s.now()},
	})
	if err != nil {
		return nil, err
	}
	return groupByUser(warnings), nil
}

// Expire marks all active warnings of a user as expired now.
// Already-expired records keep their original expiration time for history.
func (s *MongoStore) Expire(ctx context.Context, userID string) error {
	col, err := s.collection()
	if err != nil {
		return err
	}

	now := s.now()
	_, err = col.UpdateMany(ctx,
		bson.M{
			"user_id":         userID,
			"expiration_time": bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"expiration_time": now}},
	)
	return err
}

// find runs a query and decodes the result set
func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]*models.Warning, error) {
	col, err := s.collection()
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var warnings []*models.Warning
	for cursor.Next(ctx) {
		var w models.Warning
		if err := cursor.Decode(&w); err != nil {
			continue
		}
		warnings = append(warnings, &w)
	}
	return warnings, cursor.Err()
}

// groupByUser indexes a flat warning list by user id
func groupByUser(warnings []*models.Warning) map[string][]*models.Warning {
	grouped := make(map[string][]*models.Warning)
	for _, w := range warnings {
		grouped[w.UserID] = append(grouped[w.UserID], w)
	}
	return grouped
}
