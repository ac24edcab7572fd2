package main

import (
	"sisagenda/internal/organizations/handler"
	"sisagenda/internal/organizations/repository"
	"sisagenda/internal/organizations/service"
	"sisagenda/internal/organizations/validator"
	"sisagenda/pkg/app"
	"sisagenda/pkg/config"
	"sisagenda/pkg/contracts"
	"sisagenda/pkg/events"
)

const ServiceName = "organizations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Organizations service")

	// Activity and slot changes invalidate availability like schedule edits do.
	publisher, err := events.NewPublisher(cfg, cfg.SchedulesTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg, events.NewEmitter(publisher, ServiceName, cfg.Log))...)
	serverApp.AddCloser("event publisher", publisher.Close)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, emitter *events.Emitter) []contracts.Handler {
	organizationValidator := validator.NewOrganizationValidator(cfg.Log)
	organizationRepo := repository.NewMongoOrganizationRepository(cfg)

	organizationService := service.NewOrganizationService(
		organizationRepo,
		organizationValidator,
		emitter,
		cfg,
	)
	deliveryTypeService := service.NewDeliveryTypeService(
		repository.NewMongoDeliveryTypeRepository(cfg),
		organizationRepo,
		organizationValidator,
		emitter,
		cfg,
	)

	cfg.Log.Info("Organizations service initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		handler.NewOrganizationHandler(organizationService, cfg.Log),
		handler.NewDeliveryTypeHandler(deliveryTypeService, cfg.Log),
	}
}
