package repository

import (
	"context"
	"errors"
	"fmt"

	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Auditoria"

// ErrNoRecord is returned when no audit record matches.
var ErrNoRecord = errors.New("audit record not found")

// AuditRepository is append-only: records are created and read, never
// updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, record *model.AuditRecord) error
	Find(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditRecord, error)
	Count(ctx context.Context, filter model.AuditFilter) (int64, error)
	Latest(ctx context.Context, filter model.AuditFilter) (*model.AuditRecord, error)
}

type mongoAuditRepository struct {
	store *mongostore.Store[model.AuditRecord]
}

func NewMongoAuditRepository(cfg *config.Config, sequencer mongostore.Sequencer) AuditRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAuditRepository{
		store: mongostore.NewStore[model.AuditRecord](db, CollectionName, sequencer, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoAuditRepository) Create(ctx context.Context, record *model.AuditRecord) error {
	id, err := r.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate audit id: %w", err)
	}
	record.ID = id

	if err := r.store.Insert(ctx, record); err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}
	return nil
}

func (r *mongoAuditRepository) Find(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditRecord, error) {
	opts := options.Find().
		SetSort(newestFirst()).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return r.store.Find(ctx, toBSON(filter), opts)
}

func (r *mongoAuditRepository) Count(ctx context.Context, filter model.AuditFilter) (int64, error) {
	return r.store.Count(ctx, toBSON(filter))
}

func (r *mongoAuditRepository) Latest(ctx context.Context, filter model.AuditFilter) (*model.AuditRecord, error) {
	record, err := r.store.FindOne(ctx, toBSON(filter), options.FindOne().SetSort(newestFirst()))
	if err != nil {
		if errors.Is(err, mongostore.ErrNotFound) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to find latest audit record: %w", err)
	}
	return record, nil
}

func newestFirst() bson.D {
	return bson.D{{Key: "data_hora", Value: -1}, {Key: "_id", Value: -1}}
}

func toBSON(f model.AuditFilter) bson.M {
	q := bson.M{}
	if f.TechnicianID > 0 {
		q["id_funcionario"] = f.TechnicianID
	}
	if f.EquipmentType != "" {
		q["tipo_equipamento"] = f.EquipmentType
	}
	if f.EquipmentID > 0 {
		q["id_equipamento"] = f.EquipmentID
	}
	if f.Action != "" {
		q["tipo_acao"] = f.Action
	}
	if f.TargetStatus != "" {
		q["status_destino"] = f.TargetStatus
	}
	return q
}
