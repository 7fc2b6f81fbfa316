package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	externalerrors "bikeshare/internal/external/errors"
	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

const EmailCollection = "Emails"

type EmailRepository interface {
	Create(ctx context.Context, email *model.Email) error
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
}

type mongoEmailRepository struct {
	store *mongostore.Store[model.Email]
}

func NewMongoEmailRepository(cfg *config.Config, sequencer mongostore.Sequencer) EmailRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEmailRepository{
		store: mongostore.NewStore[model.Email](db, EmailCollection, sequencer, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoEmailRepository) Create(ctx context.Context, email *model.Email) error {
	id, err := r.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate email id: %w", err)
	}
	email.ID = id

	if err := r.store.Insert(ctx, email); err != nil {
		return fmt.Errorf("failed to create email: %w", err)
	}
	return nil
}

func (r *mongoEmailRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	err := r.store.Set(ctx, id, bson.M{"enviado": true, "data_envio": sentAt})
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return externalerrors.ErrEmailNotFound
		}
		return fmt.Errorf("failed to mark email as sent: %w", err)
	}
	return nil
}
