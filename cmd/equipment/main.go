package main

import (
	audithandler "bikeshare/internal/audit/handler"
	auditrepo "bikeshare/internal/audit/repository"
	auditservice "bikeshare/internal/audit/service"
	"bikeshare/internal/equipment/handler"
	"bikeshare/internal/equipment/repository"
	"bikeshare/internal/equipment/service"
	"bikeshare/internal/equipment/validator"
	"bikeshare/pkg/app"
	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
)

const ServiceName = "equipment"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.MongoConnTimeout)
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Equipment service")
	registry := initHandlers(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(registry)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) *handler.Registry {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	sequencer := mongostore.NewSequencer(db)
	txManager := mongostore.NewTransactionManager(cfg.Client.Mongo)
	equipmentValidator := validator.NewEquipmentValidator(cfg.Log)

	bikes := repository.NewMongoBicycleRepository(cfg, sequencer)
	locks := repository.NewMongoLockRepository(cfg, sequencer)
	totems := repository.NewMongoTotemRepository(cfg, sequencer)

	auditService := auditservice.NewAuditService(auditrepo.NewMongoAuditRepository(cfg, sequencer), cfg)

	bicycleService := service.NewBicycleService(bikes, locks, auditService, txManager, equipmentValidator, cfg)
	lockService := service.NewLockService(locks, bikes, totems, auditService, txManager, equipmentValidator, cfg)
	totemService := service.NewTotemService(totems, locks, bikes, txManager, equipmentValidator, cfg)

	cfg.Log.Info("Equipment services initialized", "database", cfg.MongoDatabaseName)
	return handler.NewRegistry(
		handler.NewBicycleHandler(bicycleService, cfg.Log),
		handler.NewLockHandler(lockService, cfg.Log),
		handler.NewTotemHandler(totemService, cfg.Log),
		audithandler.NewAuditHandler(auditService, cfg.Log),
	)
}
