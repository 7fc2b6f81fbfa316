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
)

const TotemCollection = "Totens"

type TotemRepository interface {
	Create(ctx context.Context, totem *model.Totem) error
	FindByID(ctx context.Context, id int64) (*model.Totem, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Totem, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, totem *model.Totem) error
	Delete(ctx context.Context, id int64) error
}

type mongoTotemRepository struct {
	store *mongostore.Store[model.Totem]
}

func NewMongoTotemRepository(cfg *config.Config, sequencer mongostore.Sequencer) TotemRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTotemRepository{
		store: mongostore.NewStore[model.Totem](db, TotemCollection, sequencer, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoTotemRepository) Create(ctx context.Context, totem *model.Totem) error {
	id, err := r.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate totem id: %w", err)
	}
	totem.ID = id

	if err := r.store.Insert(ctx, totem); err != nil {
		return fmt.Errorf("failed to create totem: %w", err)
	}
	return nil
}

func (r *mongoTotemRepository) FindByID(ctx context.Context, id int64) (*model.Totem, error) {
	totem, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return nil, equipmenterrors.ErrTotemNotFound
		}
		return nil, fmt.Errorf("failed to find totem: %w", err)
	}
	return totem, nil
}

func (r *mongoTotemRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Totem, error) {
	return r.store.Page(ctx, bson.M{}, limit, offset)
}

func (r *mongoTotemRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, bson.M{})
}

func (r *mongoTotemRepository) Save(ctx context.Context, totem *model.Totem) error {
	err := r.store.Replace(ctx, totem.ID, totem)
	if errors.Is(err, mongostore.ErrNotFound) {
		return equipmenterrors.ErrTotemNotFound
	}
	return err
}

func (r *mongoTotemRepository) Delete(ctx context.Context, id int64) error {
	err := r.store.Delete(ctx, id)
	if errors.Is(err, mongostore.ErrNotFound) {
		return equipmenterrors.ErrTotemNotFound
	}
	return err
}
