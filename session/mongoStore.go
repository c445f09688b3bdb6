package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicsync-web/models"
)

// mongoRecord is the document shape of the sessions collection
type mongoRecord struct {
	Key       string       `bson:"_id"`
	Token     string       `bson:"token"`
	User      *models.User `bson:"user,omitempty"`
	CreatedAt time.Time    `bson:"createdAt"`
	ExpiresAt time.Time    `bson:"expiresAt"`
}

func newMongoRecord(key string, rec *Record, expiresAt time.Time) mongoRecord {
	return mongoRecord{
		Key:       key,
		Token:     rec.Token,
		User:      rec.User,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: expiresAt,
	}
}

func (d mongoRecord) record() *Record {
	return &Record{Token: d.Token, User: d.User, CreatedAt: d.CreatedAt, ExpiresAt: d.ExpiresAt}
}

// MongoStore keeps records in a collection expired by a TTL index.
type MongoStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("sessions"), now: time.Now}
}

// EnsureIndexes creates the TTL index on expiresAt.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, err := s.collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

func (s *MongoStore) Get(ctx context.Context, key string) (*Record, error) {
	var doc mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo session get: %w", err)
	}
	// The TTL monitor runs once a minute; do not hand out records it has not reaped yet.
	if !s.now().Before(doc.ExpiresAt) {
		return nil, ErrNotFound
	}
	return doc.record(), nil
}

func (s *MongoStore) Save(ctx context.Context, key string, rec *Record, ttl time.Duration) error {
	doc := newMongoRecord(key, rec, s.now().Add(ttl))
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo session save: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo session delete: %w", err)
	}
	return nil
}
