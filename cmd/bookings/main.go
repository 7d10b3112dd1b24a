package main

import (
	"crafthub/internal/bookings/events"
	bookinghandler "crafthub/internal/bookings/handler"
	bookingrepo "crafthub/internal/bookings/repository"
	bookingservice "crafthub/internal/bookings/service"
	"crafthub/internal/bookings/sweeper"
	bookingvalidator "crafthub/internal/bookings/validator"
	workshophandler "crafthub/internal/workshops/handler"
	workshoprepo "crafthub/internal/workshops/repository"
	workshopservice "crafthub/internal/workshops/service"
	workshopvalidator "crafthub/internal/workshops/validator"
	"crafthub/pkg/app"
	"crafthub/pkg/config"
	kafka_config "crafthub/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting CraftHub bookings service")

	var kafkaCfg *kafka_config.Config
	if cfg.EventsBroker == config.EventsBrokerKafka {
		var err error
		kafkaCfg, err = kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		kafkaCfg.LogConfiguration(cfg.Log)
	}

	publisher, err := events.NewPublisher(cfg, kafkaCfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking event publisher", "error", err, "broker", cfg.EventsBroker)
	}

	workshopRepo := workshoprepo.NewMongoWorkshopRepository(cfg)
	commentRepo := workshoprepo.NewMongoCommentRepository(cfg)
	wsValidator := workshopvalidator.NewWorkshopValidator()
	workshopService := workshopservice.NewWorkshopService(workshopRepo, commentRepo, wsValidator, cfg)
	commentService := workshopservice.NewCommentService(workshopRepo, commentRepo, wsValidator, cfg)

	bookingService := bookingservice.NewBookingService(
		bookingrepo.NewMongoBookingRepository(cfg),
		workshopRepo,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		workshophandler.NewWorkshopHandler(workshopService, commentService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log, cfg.PaymentsWebhookSecret),
	)
	serverApp.AddCloser(publisher)

	var locker sweeper.Locker
	if cfg.Client.Redis != nil {
		locker = sweeper.NewRedisLocker(cfg.Client.Redis)
	}
	serverApp.AddWorker(sweeper.New(bookingService, locker, cfg))

	if kafkaCfg != nil {
		payments, err := events.NewPaymentConsumer(cfg, kafkaCfg, bookingService)
		if err != nil {
			cfg.Log.Fatal("Failed to create payments consumer", "error", err)
		}
		serverApp.AddWorker(payments)
	}

	serverApp.Run()
}
