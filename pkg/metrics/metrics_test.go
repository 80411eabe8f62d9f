package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_LifecycleAndExpired(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer("facility-booking", reg)

	m.IncLifecycleOperation("cancel", "success")
	m.IncLifecycleOperation("cancel", "success")
	m.IncLifecycleOperation("cancel", "forbidden")
	m.AddExpired(3)
	m.AddExpired(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lifecycleOperations.WithLabelValues("facility-booking", "cancel", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lifecycleOperations.WithLabelValues("facility-booking", "cancel", "forbidden")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.reservationsExpired.WithLabelValues("facility-booking")))
}

func TestMetrics_HTTPAndDB(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer("facility-booking", reg)

	m.ObserveHTTPRequest("GET", "/api/v1/reservations/{reservationId}", 200, 10*time.Millisecond)
	m.ObserveDBQuery("select", time.Millisecond, nil)
	m.ObserveDBQuery("update", time.Millisecond, errors.New("boom"))
	m.SetDBConnections(5, 2, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("facility-booking", "GET", "/api/v1/reservations/{reservationId}", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.dbConnections.WithLabelValues("facility-booking", "in_use")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncLifecycleOperation("extend", "success")
		m.AddExpired(1)
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveDBQuery("select", time.Millisecond, nil)
		m.SetDBConnections(1, 1, 0)
	})
}
