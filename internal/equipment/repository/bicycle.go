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

const BicycleCollection = "Bicicletas"

type BicycleRepository interface {
	Create(ctx context.Context, bike *model.Bicycle) error
	FindByID(ctx context.Context, id int64) (*model.Bicycle, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*model.Bicycle, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Bicycle, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, bike *model.Bicycle) error
	Delete(ctx context.Context, id int64) error
}

type mongoBicycleRepository struct {
	store *mongostore.Store[model.Bicycle]
}

func NewMongoBicycleRepository(cfg *config.Config, sequencer mongostore.Sequencer) BicycleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBicycleRepository{
		store: mongostore.NewStore[model.Bicycle](db, BicycleCollection, sequencer, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoBicycleRepository) Create(ctx context.Context, bike *model.Bicycle) error {
	id, err := r.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate bicycle id: %w", err)
	}
	bike.ID = id

	if err := r.store.Insert(ctx, bike); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return equipmenterrors.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to create bicycle: %w", err)
	}
	return nil
}

func (r *mongoBicycleRepository) FindByID(ctx context.Context, id int64) (*model.Bicycle, error) {
	bike, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return nil, equipmenterrors.ErrBicycleNotFound
		}
		return nil, fmt.Errorf("failed to find bicycle: %w", err)
	}
	return bike, nil
}

func (r *mongoBicycleRepository) FindByIDs(ctx context.Context, ids []int64) ([]*model.Bicycle, error) {
	if len(ids) == 0 {
		return []*model.Bicycle{}, nil
	}
	return r.store.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoBicycleRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Bicycle, error) {
	return r.store.Page(ctx, bson.M{}, limit, offset)
}

func (r *mongoBicycleRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, bson.M{})
}

func (r *mongoBicycleRepository) Save(ctx context.Context, bike *model.Bicycle) error {
	err := r.store.Replace(ctx, bike.ID, bike)
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return equipmenterrors.ErrBicycleNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return equipmenterrors.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to save bicycle: %w", err)
	}
	return nil
}

func (r *mongoBicycleRepository) Delete(ctx context.Context, id int64) error {
	err := r.store.Delete(ctx, id)
	if errors.Is(err, mongostore.ErrNotFound) {
		return equipmenterrors.ErrBicycleNotFound
	}
	return err
}
