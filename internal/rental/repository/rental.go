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
	"go.mongodb.org/mongo-driver/mongo"
)

const RentalCollection = "Alugueis"

type RentalRepository interface {
	Create(ctx context.Context, rental *model.Rental) error
	FindByID(ctx context.Context, id int64) (*model.Rental, error)
	FindActiveByCyclist(ctx context.Context, cyclistID int64) (*model.Rental, error)
	FindActiveByBicycle(ctx context.Context, bicycleID int64) (*model.Rental, error)
	Finish(ctx context.Context, id int64, endLockID int64, endTime time.Time, extraChargeID *int64) error
}

type mongoRentalRepository struct {
	store *mongostore.Store[model.Rental]
}

func NewMongoRentalRepository(cfg *config.Config, sequencer mongostore.Sequencer) RentalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRentalRepository{
		store: mongostore.NewStore[model.Rental](db, RentalCollection, sequencer, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	id, err := r.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate rental id: %w", err)
	}
	rental.ID = id

	if err := r.store.Insert(ctx, rental); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rentalerrors.ErrActiveRentalExists
		}
		return fmt.Errorf("failed to create rental: %w", err)
	}
	return nil
}

func (r *mongoRentalRepository) FindByID(ctx context.Context, id int64) (*model.Rental, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRentalRepository) FindActiveByCyclist(ctx context.Context, cyclistID int64) (*model.Rental, error) {
	return r.findOne(ctx, bson.M{"ciclista": cyclistID, "status": model.RentalInProgress})
}

func (r *mongoRentalRepository) FindActiveByBicycle(ctx context.Context, bicycleID int64) (*model.Rental, error) {
	return r.findOne(ctx, bson.M{"bicicleta": bicycleID, "status": model.RentalInProgress})
}

// Finish closes an in-progress rental. The status filter makes a second
// concurrent return of the same rental fail with ErrRentalNotActive.
func (r *mongoRentalRepository) Finish(ctx context.Context, id int64, endLockID int64, endTime time.Time, extraChargeID *int64) error {
	fields := bson.M{
		"trancaFim": endLockID,
		"horaFim":   endTime,
		"status":    model.RentalFinished,
	}
	if extraChargeID != nil {
		fields["cobrancaExtra"] = *extraChargeID
	}

	result, err := r.store.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.RentalInProgress},
		bson.M{"$set": fields},
	)
	if err != nil {
		return fmt.Errorf("failed to finish rental: %w", err)
	}
	if result.MatchedCount == 0 {
		return rentalerrors.ErrRentalNotActive
	}
	return nil
}

func (r *mongoRentalRepository) findOne(ctx context.Context, filter bson.M) (*model.Rental, error) {
	rental, err := r.store.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return nil, rentalerrors.ErrRentalNotFound
		}
		return nil, fmt.Errorf("failed to find rental: %w", err)
	}
	return rental, nil
}
