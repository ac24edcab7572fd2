package main

import (
	"sisagenda/internal/appointments/handler"
	"sisagenda/internal/appointments/repository"
	"sisagenda/internal/appointments/service"
	"sisagenda/internal/appointments/validator"
	availabilityrepository "sisagenda/internal/availability/repository"
	availabilityservice "sisagenda/internal/availability/service"
	"sisagenda/pkg/app"
	"sisagenda/pkg/config"
	"sisagenda/pkg/events"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Appointments service")

	publisher, err := events.NewPublisher(cfg, cfg.AppointmentsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	appointmentService := initServices(cfg, events.NewEmitter(publisher, ServiceName, cfg.Log))

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.AddCloser("event publisher", publisher.Close)
	serverApp.Run()
}

func initServices(cfg *config.Config, emitter *events.Emitter) service.AppointmentService {
	// Slot checks run inside the write transaction, and a Mongo session
	// cannot serve concurrent operations.
	slotChecker := availabilityservice.NewAvailabilityService(
		availabilityrepository.NewMongoStore(cfg),
		cfg,
		availabilityservice.WithMaxConcurrentLoads(1),
	)

	appointmentService := service.NewAppointmentService(
		repository.NewMongoAppointmentRepository(cfg),
		repository.NewAppointmentLockRepository(cfg),
		slotChecker,
		validator.NewAppointmentValidator(cfg.Log),
		emitter,
		cfg,
	)

	cfg.Log.Info("Appointments service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService
}
