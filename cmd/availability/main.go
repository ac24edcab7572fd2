package main

import (
	"sisagenda/internal/availability/events"
	"sisagenda/internal/availability/handler"
	"sisagenda/internal/availability/repository"
	"sisagenda/internal/availability/service"
	"sisagenda/pkg/app"
	"sisagenda/pkg/config"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Availability service")
	availabilityService, invalidator := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	if invalidator != nil {
		initConsumers(cfg, serverApp, invalidator)
	}
	serverApp.Run()
}

// initServices wraps the engine in the Redis cache when Redis is reachable.
// The invalidator is nil when there is no cache to invalidate.
func initServices(cfg *config.Config) (service.AvailabilityService, service.CacheInvalidator) {
	store := repository.NewMongoStore(cfg)
	availabilityService := service.NewAvailabilityService(store, cfg)

	if cfg.Client.Redis == nil || cfg.AvailabilityCacheTTL <= 0 {
		cfg.Log.Warn("Availability cache disabled")
		return availabilityService, nil
	}

	cached := service.NewCachedAvailabilityService(availabilityService, cfg.Client.Redis, cfg.AvailabilityCacheTTL, cfg.Loc(), cfg.Log)
	cfg.Log.Info("Availability service initialized",
		"database", cfg.MongoDatabaseName,
		"cache_ttl", cfg.AvailabilityCacheTTL,
	)
	return cached, cached
}

func initConsumers(cfg *config.Config, serverApp *app.Application, invalidator service.CacheInvalidator) {
	if !cfg.EventsEnabled {
		cfg.Log.Warn("Events disabled, cached availability expires only by TTL")
		return
	}

	consumers, err := events.NewConsumers(cfg, events.NewInvalidationHandler(invalidator))
	if err != nil {
		cfg.Log.Fatal("Failed to create event consumers", "error", err)
	}
	for _, consumer := range consumers {
		serverApp.AddWorker(consumer)
	}
}
