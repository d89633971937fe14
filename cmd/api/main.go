package main

import (
	bookingshandler "experia/internal/bookings/handler"
	bookingsrepo "experia/internal/bookings/repository"
	bookingsservice "experia/internal/bookings/service"
	"experia/internal/bookings/validator"
	experienceshandler "experia/internal/experiences/handler"
	experiencesrepo "experia/internal/experiences/repository"
	experiencesservice "experia/internal/experiences/service"
	"experia/internal/promo"
	promohandler "experia/internal/promo/handler"
	"experia/pkg/app"
	"experia/pkg/config"
	"experia/pkg/contracts"
	"experia/pkg/kafka"
	kafka_config "experia/pkg/kafka/config"
)

const ServiceName = "api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting API service")

	producer := initProducer(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg, producer)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) []contracts.Handler {
	engine := promo.NewEngine(cfg.PromoCatalog)

	experienceRepo := experiencesrepo.NewMongoExperienceRepository(cfg)
	experienceService := experiencesservice.NewExperienceService(experienceRepo, cfg)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)

	var publisher bookingsservice.EventPublisher
	if producer != nil {
		publisher = producer
	}
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		experienceRepo,
		bookingValidator,
		engine,
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		experienceshandler.NewExperienceHandler(experienceService, cfg.Log),
		promohandler.NewPromoHandler(engine, cfg.Log),
	}
}

// initProducer is best-effort: the API keeps serving bookings when no
// broker is configured, it just skips the confirmation events.
func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Kafka disabled", "error", err)
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, contracts.TopicBookingConfirmed, contracts.TopicBookingConfirmedDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, booking events disabled", "error", err)
		return nil
	}

	return producer
}
