package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "sisagenda"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultPort        = "8080"
	DefaultLogLevel    = "info"
	DefaultLogFileSize = 100

	DefaultTimeZone             = "America/Sao_Paulo"
	DefaultAvailabilityCacheTTL = 2 * time.Minute
	DefaultAppointmentLockTTL   = 10 * time.Second

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultEventsEnabled       = false
	DefaultAppointmentsTopic   = "sisagenda.appointments"
	DefaultSchedulesTopic      = "sisagenda.schedules"
	DefaultEventsDLQTopic      = "sisagenda.events.dlq"
	DefaultAvailabilityGroupID = "availability-cache-invalidator"
)
