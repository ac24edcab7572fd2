package config

import (
	"strings"
	"testing"
	"time"

	"sisagenda/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		MongoURI:             DefaultMongoURI,
		MongoDatabaseName:    DefaultMongoDatabaseName,
		MongoConnTimeout:     DefaultMongoConnTimeout,
		Port:                 DefaultPort,
		TimeZone:             DefaultTimeZone,
		AvailabilityCacheTTL: DefaultAvailabilityCacheTTL,
		AppointmentLockTTL:   DefaultAppointmentLockTTL,
		RateLimitRequests:    DefaultRateLimitRequests,
		RateLimitWindow:      DefaultRateLimitWindow,
		RequestTimeout:       DefaultRequestTimeout,
		IdempotencyTTL:       DefaultIdempotencyTTL,
		MaxRequestSize:       DefaultMaxRequestSize,
		ReadTimeout:          DefaultReadTimeout,
		WriteTimeout:         DefaultWriteTimeout,
		IdleTimeout:          DefaultIdleTimeout,
		ShutdownTimeout:      DefaultShutdownTimeout,
		Log:                  logger.New(logger.Config{Level: logger.ERROR, Service: "test"}),
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location.String())
	assert.Equal(t, "BR", cfg.PhoneRegion)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "99999"
	cfg.MongoURI = "postgres://user:secret@db"
	cfg.TimeZone = "Mars/Olympus"
	cfg.AppointmentLockTTL = 0
	cfg.EventsEnabled = true
	cfg.SchedulesTopic = ""

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "Port must be between")
	assert.Contains(t, msg, "MongoURI must start with")
	assert.Contains(t, msg, "TimeZone must be a valid IANA zone")
	assert.Contains(t, msg, "AppointmentLockTTL must be positive")
	assert.Contains(t, msg, "SchedulesTopic cannot be empty")
	assert.NotContains(t, msg, "secret")
	assert.Equal(t, 5, strings.Count(msg, "\n")-1)
}

func TestLoc(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{}).Loc())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv(EnvRedisDB, "3")
	t.Setenv(EnvEventsEnabled, "true")
	t.Setenv(EnvAvailabilityCacheTTL, "45s")
	t.Setenv(EnvRateLimitRequests, "many")

	assert.Equal(t, 3, getEnvNum(EnvRedisDB, DefaultRedisDB))
	assert.True(t, getEnvBool(EnvEventsEnabled, false))
	assert.Equal(t, 45*time.Second, getEnvDuration(EnvAvailabilityCacheTTL, DefaultAvailabilityCacheTTL))
	assert.Equal(t, DefaultRateLimitRequests, getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests))
}

func TestNormalizePagination(t *testing.T) {
	assert.Equal(t, 10, NormalizePaginationLimit(0))
	assert.Equal(t, 25, NormalizePaginationLimit(25))
	assert.Equal(t, DefaultPaginationLimit, NormalizePaginationLimit(1000))
	assert.Equal(t, int64(0), NormalizeOffset(-4))
}
