package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SequencesCollection = "Sequences"

// Sequencer hands out integer ids per collection.
type Sequencer interface {
	Next(ctx context.Context, collection string) (int64, error)
}

type counter struct {
	Collection string `bson:"_id"`
	Value      int64  `bson:"value"`
}

type mongoSequencer struct {
	db *mongo.Database
}

// NewSequencer returns a Sequencer backed by the Sequences collection. A
// counter is seeded from the highest existing _id of its collection the first
// time it is used and only ever increases, so ids freed by deletes are not
// handed out again.
func NewSequencer(db *mongo.Database) Sequencer {
	return &mongoSequencer{db: db}
}

func (s *mongoSequencer) Next(ctx context.Context, collection string) (int64, error) {
	counters := s.db.Collection(SequencesCollection)

	if err := s.seed(ctx, counters, collection); err != nil {
		return 0, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c counter
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", collection, err)
	}

	return c.Value, nil
}

func (s *mongoSequencer) seed(ctx context.Context, counters *mongo.Collection, collection string) error {
	err := counters.FindOne(ctx, bson.M{"_id": collection}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to read sequence %s: %w", collection, err)
	}

	current, err := s.currentMax(ctx, collection)
	if err != nil {
		return err
	}

	_, err = counters.InsertOne(ctx, counter{Collection: collection, Value: current})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to seed sequence %s: %w", collection, err)
	}
	return nil
}

func (s *mongoSequencer) currentMax(ctx context.Context, collection string) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetProjection(bson.M{"_id": 1})

	var doc struct {
		ID int64 `bson:"_id"`
	}
	err := s.db.Collection(collection).FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read max id of %s: %w", collection, err)
	}
	return doc.ID, nil
}
