package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by Store lookups and writes that match no document.
// Repositories translate it into their own sentinel.
var ErrNotFound = errors.New("document not found")

// WithTimeout wraps ctx with a timeout unless it is a transaction's
// SessionContext, which cannot be wrapped without leaving the transaction.
// An earlier deadline on ctx is kept.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// Store is a keyed collection of T documents with integer _id values handed
// out by a Sequencer.
type Store[T any] struct {
	name         string
	collection   *mongo.Collection
	sequencer    Sequencer
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewStore[T any](db *mongo.Database, name string, sequencer Sequencer, readTimeout, writeTimeout time.Duration) *Store[T] {
	return &Store[T]{
		name:         name,
		collection:   db.Collection(name),
		sequencer:    sequencer,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

func (s *Store[T]) Name() string {
	return s.name
}

func (s *Store[T]) Collection() *mongo.Collection {
	return s.collection
}

// NextID allocates the next id of this collection.
func (s *Store[T]) NextID(ctx context.Context) (int64, error) {
	ctx, cancel := WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	return s.sequencer.Next(ctx, s.name)
}

func (s *Store[T]) Insert(ctx context.Context, doc *T) error {
	ctx, cancel := WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", s.name, err)
	}
	return nil
}

func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	return s.FindOne(ctx, bson.M{"_id": id})
}

func (s *Store[T]) FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (*T, error) {
	ctx, cancel := WithTimeout(ctx, s.readTimeout)
	defer cancel()

	var doc T
	err := s.collection.FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find in %s: %w", s.name, err)
	}
	return &doc, nil
}

func (s *Store[T]) Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]*T, error) {
	ctx, cancel := WithTimeout(ctx, s.readTimeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.name, err)
	}
	defer cursor.Close(ctx)

	docs := []*T{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.name, err)
	}
	return docs, nil
}

// Page lists documents sorted by _id.
func (s *Store[T]) Page(ctx context.Context, filter any, limit int, offset int64) ([]*T, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return s.Find(ctx, filter, opts)
}

func (s *Store[T]) Count(ctx context.Context, filter any) (int64, error) {
	ctx, cancel := WithTimeout(ctx, s.readTimeout)
	defer cancel()

	n, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.name, err)
	}
	return n, nil
}

// Set applies $set to the document with the given id; unset lists fields to
// remove. ErrNotFound when nothing matched.
func (s *Store[T]) Set(ctx context.Context, id int64, fields bson.M, unset ...string) error {
	update := bson.M{}
	if len(fields) > 0 {
		update["$set"] = fields
	}
	if len(unset) > 0 {
		u := bson.M{}
		for _, f := range unset {
			u[f] = ""
		}
		update["$unset"] = u
	}
	result, err := s.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store[T]) UpdateOne(ctx context.Context, filter any, update any) (*mongo.UpdateResult, error) {
	ctx, cancel := WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", s.name, err)
	}
	return result, nil
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	ctx, cancel := WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", s.name, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace overwrites the stored document with the same id.
func (s *Store[T]) Replace(ctx context.Context, id int64, doc *T) error {
	ctx, cancel := WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("failed to replace in %s: %w", s.name, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store[T]) UpdateMany(ctx context.Context, filter any, update any) (*mongo.UpdateResult, error) {
	ctx, cancel := WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	result, err := s.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", s.name, err)
	}
	return result, nil
}
