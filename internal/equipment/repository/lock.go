package repository

import (
	"context"
	"errors"
	"fmt"

	equipmenterrors "bikeshare/internal/equipment/errors"
	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollection = "Trancas"

type LockRepository interface {
	Create(ctx context.Context, lock *model.Lock) error
	FindByID(ctx context.Context, id int64) (*model.Lock, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Lock, error)
	FindByTotem(ctx context.Context, totemID int64) ([]*model.Lock, error)
	FindByBicycle(ctx context.Context, bikeID int64) (*model.Lock, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, lock *model.Lock) error
	DetachTotem(ctx context.Context, totemID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type mongoLockRepository struct {
	store *mongostore.Store[model.Lock]
}

func NewMongoLockRepository(cfg *config.Config, sequencer mongostore.Sequencer) LockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		store: mongostore.NewStore[model.Lock](db, LockCollection, sequencer, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoLockRepository) Create(ctx context.Context, lock *model.Lock) error {
	id, err := r.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate lock id: %w", err)
	}
	lock.ID = id

	if err := r.store.Insert(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return equipmenterrors.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to create lock: %w", err)
	}
	return nil
}

func (r *mongoLockRepository) FindByID(ctx context.Context, id int64) (*model.Lock, error) {
	lock, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return nil, equipmenterrors.ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to find lock: %w", err)
	}
	return lock, nil
}

func (r *mongoLockRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Lock, error) {
	return r.store.Page(ctx, bson.M{}, limit, offset)
}

func (r *mongoLockRepository) FindByTotem(ctx context.Context, totemID int64) ([]*model.Lock, error) {
	return r.store.Find(ctx, bson.M{"totem": totemID})
}

// FindByBicycle returns the lock holding the bicycle, or ErrLockNotFound.
func (r *mongoLockRepository) FindByBicycle(ctx context.Context, bikeID int64) (*model.Lock, error) {
	lock, err := r.store.FindOne(ctx, bson.M{"bicicleta": bikeID})
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return nil, equipmenterrors.ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to find lock by bicycle: %w", err)
	}
	return lock, nil
}

func (r *mongoLockRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, bson.M{})
}

func (r *mongoLockRepository) Save(ctx context.Context, lock *model.Lock) error {
	err := r.store.Replace(ctx, lock.ID, lock)
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return equipmenterrors.ErrLockNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return equipmenterrors.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to save lock: %w", err)
	}
	return nil
}

// DetachTotem clears the totem reference of every lock attached to it and
// returns how many were changed.
func (r *mongoLockRepository) DetachTotem(ctx context.Context, totemID int64) (int64, error) {
	result, err := r.store.UpdateMany(ctx, bson.M{"totem": totemID}, bson.M{"$unset": bson.M{"totem": ""}})
	if err != nil {
		return 0, fmt.Errorf("failed to detach locks from totem: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoLockRepository) Delete(ctx context.Context, id int64) error {
	err := r.store.Delete(ctx, id)
	if errors.Is(err, mongostore.ErrNotFound) {
		return equipmenterrors.ErrLockNotFound
	}
	return err
}
