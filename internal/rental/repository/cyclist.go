package repository

import (
	"context"
	"errors"
	"fmt"

	rentalerrors "bikeshare/internal/rental/errors"
	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/model"
)

const CyclistCollection = "Ciclistas"

// CyclistRepository is read-only; profiles are maintained by the
// registration service.
type CyclistRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Cyclist, error)
}

type mongoCyclistRepository struct {
	store *mongostore.Store[model.Cyclist]
}

func NewMongoCyclistRepository(cfg *config.Config) CyclistRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCyclistRepository{
		store: mongostore.NewStore[model.Cyclist](db, CyclistCollection, nil, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoCyclistRepository) FindByID(ctx context.Context, id int64) (*model.Cyclist, error) {
	cyclist, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return nil, rentalerrors.ErrCyclistNotFound
		}
		return nil, fmt.Errorf("failed to find cyclist: %w", err)
	}
	return cyclist, nil
}
