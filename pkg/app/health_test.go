package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sisagenda/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context, *readpref.ReadPref) error { return f.err }

func serveHealth(t *testing.T, h *HealthHandler, path string) (int, HealthResponse) {
	t.Helper()
	router := httprouter.New()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealth(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	t.Run("liveness", func(t *testing.T) {
		code, body := serveHealth(t, NewHealthHandler(fakePinger{err: errors.New("down")}, nil, log), "/health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body.Status)
	})

	t.Run("ready", func(t *testing.T) {
		code, body := serveHealth(t, NewHealthHandler(fakePinger{}, rdb, log), "/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", body.Status)
		assert.Equal(t, "ok", body.Cache)
	})

	t.Run("database down", func(t *testing.T) {
		code, body := serveHealth(t, NewHealthHandler(fakePinger{err: errors.New("no primary")}, nil, log), "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "error", body.Database)
		assert.Empty(t, body.Cache)
	})

	t.Run("cache down stays ready", func(t *testing.T) {
		mr2 := miniredis.RunT(t)
		down := redis.NewClient(&redis.Options{Addr: mr2.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = down.Close() })
		mr2.Close()

		code, body := serveHealth(t, NewHealthHandler(fakePinger{}, down, log), "/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "error", body.Cache)
	})
}
