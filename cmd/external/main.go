package main

import (
	"context"
	"errors"

	"bikeshare/internal/external/consumer"
	"bikeshare/internal/external/handler"
	"bikeshare/internal/external/repository"
	"bikeshare/internal/external/scheduler"
	"bikeshare/internal/external/service"
	"bikeshare/internal/external/validator"
	"bikeshare/pkg/app"
	"bikeshare/pkg/config"
	mongostore "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/kafka"
	kafka_config "bikeshare/pkg/kafka/config"
	kafka_middleware "bikeshare/pkg/kafka/middleware"
)

const ServiceName = "external"

type services struct {
	charges service.ChargeService
	cards   service.CardService
	emails  service.EmailService
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.MongoConnTimeout)
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting External service")
	svc := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewExternalHandler(svc.charges, svc.cards, svc.emails, cfg.Log))

	queue, err := scheduler.NewScheduler(cfg.ChargeQueueSchedule, svc.charges, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create charge queue scheduler", "error", err)
	}
	queue.Start()
	serverApp.OnShutdown(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := queue.Stop(ctx); err != nil {
			cfg.Log.Warn("Charge queue job still running at shutdown", "error", err)
		}
	})

	if stop := startRefundConsumer(cfg, svc.charges); stop != nil {
		serverApp.OnShutdown(stop)
	}

	serverApp.Run()
}

func initServices(cfg *config.Config) services {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	sequencer := mongostore.NewSequencer(db)
	externalValidator := validator.NewExternalValidator(cfg.Log)

	var sender service.Sender
	if cfg.SendGridAPIKey != "" {
		sender = service.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFrom)
		cfg.Log.Info("E-mail delivery through SendGrid", "from", cfg.MailFrom)
	} else {
		sender = service.NewLogSender(cfg.Log)
		cfg.Log.Warn("SENDGRID_API_KEY not set, e-mails will only be logged")
	}

	cfg.Log.Info("External services initialized", "database", cfg.MongoDatabaseName)
	return services{
		charges: service.NewChargeService(repository.NewMongoChargeRepository(cfg, sequencer), externalValidator, cfg),
		cards:   service.NewCardService(repository.NewMongoCardValidationRepository(cfg, sequencer), externalValidator, cfg),
		emails:  service.NewEmailService(repository.NewMongoEmailRepository(cfg, sequencer), sender, externalValidator, cfg),
	}
}

// startRefundConsumer subscribes to rental events when Kafka is enabled and
// returns the function that stops it.
func startRefundConsumer(cfg *config.Config, charges service.ChargeService) func() {
	kafkaCfg := kafka_config.Load(cfg.Log)
	if !kafkaCfg.Enabled {
		cfg.Log.Warn("Kafka disabled, refund consumer not started")
		return nil
	}

	refunds := consumer.NewRefundHandler(charges, cfg.Log)
	c, err := kafka.NewConsumer(kafkaCfg, kafkaCfg.RentalEventsTopic, kafkaCfg.RefundConsumerGroup, kafkaCfg.RentalEventsDLQTopic, refunds.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create refund consumer", "error", err)
	}
	c.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	c.Use(kafka_middleware.MetricsConsumerMiddleware())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Refund consumer stopped", "error", err)
		}
	}()

	return func() {
		cancel()
		<-done
		if err := c.Close(); err != nil {
			cfg.Log.Error("Failed to close refund consumer", "error", err)
		}
	}
}
