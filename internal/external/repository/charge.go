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
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ChargeCollection = "Cobrancas_externas"

type ChargeRepository interface {
	Create(ctx context.Context, charge *model.Charge) error
	FindByID(ctx context.Context, id int64) (*model.Charge, error)
	FindPending(ctx context.Context, limit int) ([]*model.Charge, error)
	// Transition moves a charge from one status to another and fails with
	// ErrStatusChanged if it is no longer in from.
	Transition(ctx context.Context, id int64, from, to model.ChargeStatus, finalizedAt time.Time) error
}

type mongoChargeRepository struct {
	store *mongostore.Store[model.Charge]
}

func NewMongoChargeRepository(cfg *config.Config, sequencer mongostore.Sequencer) ChargeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoChargeRepository{
		store: mongostore.NewStore[model.Charge](db, ChargeCollection, sequencer, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoChargeRepository) Create(ctx context.Context, charge *model.Charge) error {
	id, err := r.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate charge id: %w", err)
	}
	charge.ID = id

	if err := r.store.Insert(ctx, charge); err != nil {
		return fmt.Errorf("failed to create charge: %w", err)
	}
	return nil
}

func (r *mongoChargeRepository) FindByID(ctx context.Context, id int64) (*model.Charge, error) {
	charge, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return nil, externalerrors.ErrChargeNotFound
		}
		return nil, fmt.Errorf("failed to find charge: %w", err)
	}
	return charge, nil
}

// FindPending returns queued charges, oldest request first.
func (r *mongoChargeRepository) FindPending(ctx context.Context, limit int) ([]*model.Charge, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "horaSolicitacao", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	return r.store.Find(ctx, bson.M{"status": model.ChargePending}, opts)
}

func (r *mongoChargeRepository) Transition(ctx context.Context, id int64, from, to model.ChargeStatus, finalizedAt time.Time) error {
	result, err := r.store.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "horaFinalizacao": finalizedAt}},
	)
	if err != nil {
		return fmt.Errorf("failed to update charge status: %w", err)
	}
	if result.MatchedCount == 0 {
		return externalerrors.ErrStatusChanged
	}
	return nil
}
