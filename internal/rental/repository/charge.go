package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	rentalerrors "bikeshare/internal/rental/errors"
	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

const ChargeCollection = "Cobrancas"

// ChargeRepository keeps the rental side's record of every charge it asked
// the gateway for.
type ChargeRepository interface {
	Create(ctx context.Context, charge *model.Charge) error
	FindByID(ctx context.Context, id int64) (*model.Charge, error)
	MarkReconciliationPending(ctx context.Context, id int64) error
	AttachGatewayCharge(ctx context.Context, id int64, gatewayID int64) error
	Cancel(ctx context.Context, id int64, at time.Time) error
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
			return nil, rentalerrors.ErrChargeNotFound
		}
		return nil, fmt.Errorf("failed to find charge: %w", err)
	}
	return charge, nil
}

func (r *mongoChargeRepository) MarkReconciliationPending(ctx context.Context, id int64) error {
	err := r.store.Set(ctx, id, bson.M{"reconciliacaoPendente": true})
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return rentalerrors.ErrChargeNotFound
		}
		return fmt.Errorf("failed to flag charge for reconciliation: %w", err)
	}
	return nil
}

func (r *mongoChargeRepository) AttachGatewayCharge(ctx context.Context, id int64, gatewayID int64) error {
	err := r.store.Set(ctx, id, bson.M{"cobrancaGateway": gatewayID})
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return rentalerrors.ErrChargeNotFound
		}
		return fmt.Errorf("failed to attach gateway charge: %w", err)
	}
	return nil
}

// Cancel only applies to charges still PENDENTE; a charge the gateway
// already settled is reversed through a refund instead.
func (r *mongoChargeRepository) Cancel(ctx context.Context, id int64, at time.Time) error {
	result, err := r.store.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.ChargePending},
		bson.M{"$set": bson.M{"status": model.ChargeCancelled, "horaFinalizacao": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel charge: %w", err)
	}
	if result.MatchedCount == 0 {
		return rentalerrors.ErrChargeNotFound
	}
	return nil
}
