package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
		wantCause  bool
	}{
		{"not found", NotFound("Organization"), CodeNotFound, http.StatusNotFound, false},
		{"not found with id", NotFoundWithID("Appointment", "abc"), CodeNotFound, http.StatusNotFound, false},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity, false},
		{"invalid input", InvalidInput("bad date"), CodeInvalidInput, http.StatusBadRequest, false},
		{"conflict", Conflict("slot taken"), CodeConflict, http.StatusConflict, false},
		{"internal", Internal("oops", cause), CodeInternal, http.StatusInternalServerError, true},
		{"invalid interval", InvalidInterval("rule end before start", cause), CodeInvalidInterval, http.StatusInternalServerError, true},
		{"invalid configuration", InvalidConfiguration("duration is zero", cause), CodeInvalidConfiguration, http.StatusInternalServerError, true},
		{"unavailable", Unavailable("Cache"), CodeUnavailable, http.StatusServiceUnavailable, false},
		{"wrap", Wrap(cause, CodeBadRequest, "bad", http.StatusBadRequest), CodeBadRequest, http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode())
			assert.Equal(t, tt.wantCause, errors.Is(tt.err, cause))
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Delivery type", "dt-1")
	assert.Equal(t, "Delivery type not found", err.Message)
	assert.Equal(t, map[string]any{"resource": "Delivery type", "id": "dt-1"}, err.Details)
}

func TestError(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: Organization not found", NotFound("Organization").Error())
	assert.Equal(t,
		"INVALID_INTERVAL: bad rule (caused by: end before start)",
		InvalidInterval("bad rule", errors.New("end before start")).Error(),
	)
}

func TestToJSON(t *testing.T) {
	err := Conflict("Slot is no longer available").WithDetails(map[string]any{"start": "09:00"})

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(err.ToJSON(), &body))
	assert.Equal(t, CodeConflict, body.Code)
	assert.Equal(t, "Slot is no longer available", body.Message)
	assert.Equal(t, "09:00", body.Details["start"])

	plain := string(Internal("oops", errors.New("secret dsn")).ToJSON())
	assert.NotContains(t, plain, "secret dsn")
	assert.NotContains(t, plain, "details")
}

func TestAsAppError(t *testing.T) {
	t.Run("finds wrapped app error", func(t *testing.T) {
		wrapped := fmt.Errorf("service: %w", Conflict("taken"))
		got := AsAppError(wrapped)
		assert.Equal(t, CodeConflict, got.Code)
		assert.True(t, IsAppError(wrapped))
		assert.True(t, HasCode(wrapped, CodeConflict))
		assert.False(t, HasCode(wrapped, CodeNotFound))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		plain := errors.New("disk full")
		got := AsAppError(plain)
		assert.Equal(t, CodeInternal, got.Code)
		assert.ErrorIs(t, got, plain)
		assert.False(t, IsAppError(plain))
	})

	t.Run("nil is not an app error", func(t *testing.T) {
		assert.False(t, IsAppError(nil))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}
