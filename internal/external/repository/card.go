package repository

import (
	"context"
	"fmt"

	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/model"
)

const CardValidationCollection = "Validacoes_cartao"

// CardValidationRepository is append-only.
type CardValidationRepository interface {
	Create(ctx context.Context, validation *model.CardValidation) error
}

type mongoCardValidationRepository struct {
	store *mongostore.Store[model.CardValidation]
}

func NewMongoCardValidationRepository(cfg *config.Config, sequencer mongostore.Sequencer) CardValidationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCardValidationRepository{
		store: mongostore.NewStore[model.CardValidation](db, CardValidationCollection, sequencer, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoCardValidationRepository) Create(ctx context.Context, validation *model.CardValidation) error {
	id, err := r.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate card validation id: %w", err)
	}
	validation.ID = id

	if err := r.store.Insert(ctx, validation); err != nil {
		return fmt.Errorf("failed to record card validation: %w", err)
	}
	return nil
}
