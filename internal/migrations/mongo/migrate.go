package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	auditrepo "bikeshare/internal/audit/repository"
	equipmentrepo "bikeshare/internal/equipment/repository"
	externalrepo "bikeshare/internal/external/repository"
	"bikeshare/internal/migrations/mongo/validators"
	rentalrepo "bikeshare/internal/rental/repository"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"
)

var inProgress = bson.M{"status": model.RentalInProgress}

var (
	BicyclesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "numero", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_numero")},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	LocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "numero", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_numero")},
		{
			Keys: bson.D{{Key: "bicicleta", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_bicicleta_docked").
				SetPartialFilterExpression(bson.M{"bicicleta": bson.M{"$gt": 0}}),
		},
		{Keys: bson.D{{Key: "totem", Value: 1}}},
	}

	AuditIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "id_funcionario", Value: 1}, {Key: "data_hora", Value: -1}}},
		{Keys: bson.D{
			{Key: "tipo_equipamento", Value: 1},
			{Key: "id_equipamento", Value: 1},
			{Key: "data_hora", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "tipo_equipamento", Value: 1},
			{Key: "id_equipamento", Value: 1},
			{Key: "tipo_acao", Value: 1},
			{Key: "status_destino", Value: 1},
			{Key: "data_hora", Value: -1},
		}},
	}

	// At most one rental in progress per cyclist and per bicycle.
	RentalsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ciclista", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_ciclista_em_andamento").SetPartialFilterExpression(inProgress),
		},
		{
			Keys:    bson.D{{Key: "bicicleta", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_bicicleta_em_andamento").SetPartialFilterExpression(inProgress),
		},
		{Keys: bson.D{{Key: "ciclista", Value: 1}, {Key: "horaInicio", Value: -1}}},
	}

	ChargesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "ciclista", Value: 1}, {Key: "horaSolicitacao", Value: -1}}},
		{
			Keys:    bson.D{{Key: "reconciliacaoPendente", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(bson.M{"reconciliacaoPendente": true}),
		},
	}

	RentalLocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
	}

	GatewayChargesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "horaSolicitacao", Value: 1}}},
		{Keys: bson.D{{Key: "ciclista", Value: 1}}},
	}

	EmailsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "destinatario", Value: 1}}},
	}

	CardValidationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "dataValidacao", Value: -1}}},
	}
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the services write, in creation order.
func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: equipmentrepo.BicycleCollection, Indexes: BicyclesIndexes, Validator: validators.BicycleValidator},
		{Name: equipmentrepo.LockCollection, Indexes: LocksIndexes, Validator: validators.LockValidator},
		{Name: equipmentrepo.TotemCollection, Validator: validators.TotemValidator},
		{Name: auditrepo.CollectionName, Indexes: AuditIndexes, Validator: validators.AuditValidator},
		{Name: rentalrepo.CyclistCollection, Validator: validators.CyclistValidator},
		{Name: rentalrepo.RentalCollection, Indexes: RentalsIndexes, Validator: validators.RentalValidator},
		{Name: rentalrepo.ChargeCollection, Indexes: ChargesIndexes, Validator: validators.ChargeValidator},
		{Name: rentalrepo.RentalLockCollection, Indexes: RentalLocksIndexes, Validator: validators.RentalLockValidator},
		{Name: externalrepo.ChargeCollection, Indexes: GatewayChargesIndexes, Validator: validators.GatewayChargeValidator},
		{Name: externalrepo.EmailCollection, Indexes: EmailsIndexes, Validator: validators.EmailValidator},
		{Name: externalrepo.CardValidationCollection, Indexes: CardValidationsIndexes, Validator: validators.CardValidationValidator},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully", "collections", len(Collections()))
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		log.Info("Collection already exists, updating validator", "collection", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			log.Warn("Failed updating validator", "collection", name, "error", err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
