package repository

import (
	"context"
	"fmt"
	"time"

	rentalerrors "bikeshare/internal/rental/errors"
	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const RentalLockCollection = "Aluguel_locks"

// RentalLockRepository manages per-cyclist advisory locks. Expired locks are
// removed by the TTL index on expires_at.
type RentalLockRepository interface {
	Acquire(ctx context.Context, lock *model.RentalLock) error
	Release(ctx context.Context, cyclistID int64, owner string) error
}

type mongoRentalLockRepository struct {
	collection   *mongo.Collection
	writeTimeout time.Duration
}

func NewMongoRentalLockRepository(cfg *config.Config) RentalLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRentalLockRepository{
		collection:   db.Collection(RentalLockCollection),
		writeTimeout: cfg.WriteTimeout,
	}
}

// Acquire returns ErrCheckoutInProgress if the lock document already exists.
func (r *mongoRentalLockRepository) Acquire(ctx context.Context, lock *model.RentalLock) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	lock.CreatedAt = time.Now()
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rentalerrors.ErrCheckoutInProgress
		}
		return fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	return nil
}

// Release deletes the lock only if owner still holds it.
func (r *mongoRentalLockRepository) Release(ctx context.Context, cyclistID int64, owner string) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": cyclistID, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release checkout lock: %w", err)
	}
	return nil
}
