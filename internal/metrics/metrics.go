package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the storefront counters. A nil *Registry is valid and
// records nothing, so core packages can be used without metrics wiring.
type Registry struct {
	reg              *prometheus.Registry
	OrdersPlaced     *prometheus.CounterVec
	CheckoutFailures *prometheus.CounterVec
	BackendFallbacks *prometheus.CounterVec
	CartMutations    *prometheus.CounterVec
	EventsPublished  prometheus.Counter
	EventsFailed     prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders persisted by checkout, by currency.",
	}, []string{"currency"})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Checkouts that did not produce an order, by reason.",
	}, []string{"reason"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_fallbacks_total",
		Help: "Switches from the relational backend to the JSON backend.",
	}, []string{"repository"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_session_mutations_total",
		Help: "Session collection mutations, by collection and operation.",
	}, []string{"collection", "op"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_events_published_total"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_events_failed_total"})

	r.MustRegister(ordersPlaced, checkoutFailures, fallbacks, cartMutations, published, failed)
	return &Registry{
		reg:              r,
		OrdersPlaced:     ordersPlaced,
		CheckoutFailures: checkoutFailures,
		BackendFallbacks: fallbacks,
		CartMutations:    cartMutations,
		EventsPublished:  published,
		EventsFailed:     failed,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) OrderPlaced(currency string) {
	if r != nil {
		r.OrdersPlaced.WithLabelValues(currency).Inc()
	}
}

func (r *Registry) CheckoutFailed(reason string) {
	if r != nil {
		r.CheckoutFailures.WithLabelValues(reason).Inc()
	}
}

func (r *Registry) Fallback(repository string) {
	if r != nil {
		r.BackendFallbacks.WithLabelValues(repository).Inc()
	}
}

func (r *Registry) SessionMutation(collection, op string) {
	if r != nil {
		r.CartMutations.WithLabelValues(collection, op).Inc()
	}
}

func (r *Registry) EventPublished() {
	if r != nil {
		r.EventsPublished.Inc()
	}
}

func (r *Registry) EventFailed() {
	if r != nil {
		r.EventsFailed.Inc()
	}
}
