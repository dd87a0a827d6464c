package main

import (
	"context"

	appointmentsEvents "slotbook/internal/appointments/events"
	appointmentsHandler "slotbook/internal/appointments/handler"
	appointmentsRepository "slotbook/internal/appointments/repository"
	appointmentsService "slotbook/internal/appointments/service"
	appointmentsValidator "slotbook/internal/appointments/validator"
	availabilityHandler "slotbook/internal/availability/handler"
	availabilityService "slotbook/internal/availability/service"
	catalogHandler "slotbook/internal/catalog/handler"
	catalogRepository "slotbook/internal/catalog/repository"
	catalogService "slotbook/internal/catalog/service"
	workhoursHandler "slotbook/internal/workhours/handler"
	workhoursRepository "slotbook/internal/workhours/repository"
	workhoursService "slotbook/internal/workhours/service"
	workhoursValidator "slotbook/internal/workhours/validator"
	"slotbook/pkg/app"
	"slotbook/pkg/calendar"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
	kafka_config "slotbook/pkg/kafka/config"
	kafka_middleware "slotbook/pkg/kafka/middleware"
	"slotbook/pkg/otelx"
)

const ServiceName = "slotbook"

type services struct {
	catalog      catalogService.CatalogService
	workHours    workhoursService.WorkingIntervalService
	appointments appointmentsService.AppointmentService
	availability availabilityService.AvailabilityService
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	shutdownTracing, err := otelx.Setup(context.Background(), otelx.ConfigFromEnv(ServiceName))
	if err != nil {
		cfg.Log.Fatal("Failed to set up tracing", "error", err)
	}

	cfg.Log.Info("Starting slotbook service")
	serverApp := app.NewApplication()

	publisher, metrics := initEvents(cfg, serverApp)
	svc := initServices(cfg, publisher)

	serverApp.SetApp(cfg, metrics,
		availabilityHandler.NewAvailabilityHandler(svc.availability, cfg),
		appointmentsHandler.NewAppointmentHandler(svc.appointments, cfg.Log),
		workhoursHandler.NewWorkingIntervalHandler(svc.workHours, cfg.Log),
		catalogHandler.NewCatalogHandler(svc.catalog, cfg.Log),
	)
	serverApp.OnShutdown("tracing", shutdownTracing)
	serverApp.Run()
}

// initEvents returns a Kafka backed publisher when events are enabled and a
// no-op publisher otherwise. metrics is nil in the latter case.
func initEvents(cfg *config.Config, serverApp *app.Application) (appointmentsEvents.Publisher, *kafka_middleware.Metrics) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Appointment events disabled")
		return appointmentsEvents.NopPublisher{}, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	producer.Use(metrics.ProducerMiddleware())

	serverApp.OnShutdown("kafka-producer", func(context.Context) error {
		return producer.Close()
	})

	cfg.Log.Info("Appointment events enabled", "topic", cfg.EventsTopic, "brokers", kafkaCfg.Brokers)
	return appointmentsEvents.NewKafkaPublisher(producer), metrics
}

func initServices(cfg *config.Config, publisher appointmentsEvents.Publisher) services {
	intervalRepo := workhoursRepository.NewMongoWorkingIntervalRepository(cfg)
	catalogSvc := catalogService.NewCatalogService(
		catalogRepository.NewMongoCatalogRepository(cfg),
		intervalRepo,
		cfg,
	)

	workHoursSvc := workhoursService.NewWorkingIntervalService(
		intervalRepo,
		catalogSvc,
		workhoursValidator.NewWorkingIntervalValidator(cfg.Log),
		cfg,
	)

	appointmentSvc := appointmentsService.NewAppointmentService(
		appointmentsRepository.NewMongoAppointmentRepository(cfg),
		appointmentsRepository.NewBookingLockRepository(cfg),
		catalogSvc,
		publisher,
		appointmentsValidator.NewAppointmentValidator(cfg.Log),
		cfg,
	)

	availabilitySvc := availabilityService.NewAvailabilityService(
		catalogSvc,
		workHoursSvc,
		appointmentSvc,
		calendar.SystemClock,
		cfg,
	)

	cfg.Log.Info("Slotbook services initialized", "database", cfg.MongoDatabaseName)
	return services{
		catalog:      catalogSvc,
		workHours:    workHoursSvc,
		appointments: appointmentSvc,
		availability: availabilitySvc,
	}
}
