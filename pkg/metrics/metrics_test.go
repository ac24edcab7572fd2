package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(availabilityQueries.WithLabelValues("cache_hit"))
	IncAvailabilityQuery("cache_hit")
	assert.Equal(t, before+1, testutil.ToFloat64(availabilityQueries.WithLabelValues("cache_hit")))

	beforeErr := testutil.ToFloat64(kafkaMessages.WithLabelValues("publish", "appointment.changed", "error"))
	ObserveKafkaMessage("publish", "appointment.changed", errors.New("broker down"), time.Millisecond)
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(kafkaMessages.WithLabelValues("publish", "appointment.changed", "error")))

	beforeUnknown := testutil.ToFloat64(kafkaMessages.WithLabelValues("consume", "unknown", "ok"))
	ObserveKafkaMessage("consume", "", nil, time.Millisecond)
	assert.Equal(t, beforeUnknown+1, testutil.ToFloat64(kafkaMessages.WithLabelValues("consume", "unknown", "ok")))

	beforeTimeouts := testutil.ToFloat64(httpAborted.WithLabelValues("timeout"))
	IncAborted("timeout")
	assert.Equal(t, beforeTimeouts+1, testutil.ToFloat64(httpAborted.WithLabelValues("timeout")))

	beforeConflicts := testutil.ToFloat64(slotConflicts)
	IncSlotConflict()
	assert.Equal(t, beforeConflicts+1, testutil.ToFloat64(slotConflicts))
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	Register()
	ObserveHTTPRequest(http.MethodGet, http.StatusOK, 5*time.Millisecond)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sisagenda_http_requests_total")
}
