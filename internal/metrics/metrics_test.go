package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.OrderPlaced("AUD")
		r.CheckoutFailed("cart_empty")
		r.Fallback("orders")
		r.SessionMutation("cart", "add")
		r.EventPublished()
		r.EventFailed()
	})
}

func TestCountersAreExposed(t *testing.T) {
	r := NewRegistry()
	r.OrderPlaced("AUD")
	r.OrderPlaced("AUD")
	r.Fallback("orders")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.OrdersPlaced.WithLabelValues("AUD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.BackendFallbacks.WithLabelValues("orders")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `storefront_orders_placed_total{currency="AUD"} 2`)
}
