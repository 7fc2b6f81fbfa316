package main

import (
	"time"

	"bikeshare/internal/rental/events"
	"bikeshare/internal/rental/handler"
	"bikeshare/internal/rental/repository"
	"bikeshare/internal/rental/service"
	"bikeshare/internal/rental/validator"
	"bikeshare/pkg/app"
	"bikeshare/pkg/client"
	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/kafka"
	kafka_config "bikeshare/pkg/kafka/config"
	kafka_middleware "bikeshare/pkg/kafka/middleware"
)

const ServiceName = "rental"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.MongoConnTimeout)
	}
	defer cfg.GracefulShutdown()

	publisher := newPublisher(cfg)

	cfg.Log.Info("Starting Rental service")
	rentalService := initServices(cfg, publisher)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRentalHandler(rentalService, cfg.Log))
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func newPublisher(cfg *config.Config) kafka.Publisher {
	kafkaCfg := kafka_config.Load(cfg.Log)
	if !kafkaCfg.Enabled {
		cfg.Log.Warn("Kafka disabled, rental events will only be logged")
		return kafka.NopPublisher{Log: cfg.Log}
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.RentalEventsTopic, kafkaCfg.RentalEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	return producer
}

func initServices(cfg *config.Config, publisher kafka.Publisher) service.RentalService {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	sequencer := mongostore.NewSequencer(db)

	rentalService := service.NewRentalService(
		repository.NewMongoRentalRepository(cfg, sequencer),
		repository.NewMongoChargeRepository(cfg, sequencer),
		repository.NewMongoCyclistRepository(cfg),
		repository.NewMongoRentalLockRepository(cfg),
		client.NewEquipmentClient(cfg.EquipmentServiceURL, cfg.OutboundTimeout),
		client.NewPaymentClient(cfg.ExternalServiceURL, cfg.OutboundTimeout),
		client.NewNotificationClient(cfg.ExternalServiceURL, cfg.OutboundTimeout),
		events.NewEmitter(publisher),
		validator.NewRentalValidator(cfg.Log),
		cfg,
		time.Now,
	)

	cfg.Log.Info("Rental service initialized",
		"database", cfg.MongoDatabaseName,
		"equipment_url", cfg.EquipmentServiceURL,
		"external_url", cfg.ExternalServiceURL,
	)
	return rentalService
}
