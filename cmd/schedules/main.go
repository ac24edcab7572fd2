package main

import (
	"sisagenda/internal/schedules/handler"
	"sisagenda/internal/schedules/repository"
	"sisagenda/internal/schedules/service"
	"sisagenda/internal/schedules/validator"
	"sisagenda/pkg/app"
	"sisagenda/pkg/config"
	"sisagenda/pkg/contracts"
	"sisagenda/pkg/events"
)

const ServiceName = "schedules"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Schedules service")

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
	scheduleValidator := validator.NewScheduleValidator(cfg.Log)

	weeklyRuleService := service.NewWeeklyRuleService(
		repository.NewMongoWeeklyRuleRepository(cfg),
		scheduleValidator,
		emitter,
		cfg,
	)
	overrideService := service.NewOverrideService(
		repository.NewMongoOverrideRepository(cfg),
		scheduleValidator,
		emitter,
		cfg,
	)

	cfg.Log.Info("Schedules service initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		handler.NewWeeklyRuleHandler(weeklyRuleService, cfg.Log),
		handler.NewOverrideHandler(overrideService, cfg.Log),
	}
}
