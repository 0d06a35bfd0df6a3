package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareLabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "999"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/products/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/api/products/{id}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Latency))
}

func TestDomainCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.CartOperation("add")
	m.CartOperation("add")
	m.OrderOutcome("placed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartItems.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Orders.WithLabelValues("placed")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.CartOperation("add") })
}
