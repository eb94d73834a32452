package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart store activity.
type CartMetrics struct {
	operations *prometheus.CounterVec
	outOfStock prometheus.Counter
	checkouts  *prometheus.CounterVec
	cartItems  prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart store operations by kind.",
	}, []string{"op"})
	outOfStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_out_of_stock_total",
		Help: "Add attempts rejected because the variant had no stock.",
	})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	cartItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_total_items",
		Help:    "Distribution of cart sizes observed after mutations.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(operations, outOfStock, checkouts, cartItems)
	return &CartMetrics{
		operations: operations,
		outOfStock: outOfStock,
		checkouts:  checkouts,
		cartItems:  cartItems,
	}
}

// IncOperation counts one store operation.
func (c *CartMetrics) IncOperation(op string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncOutOfStock counts one rejected add.
func (c *CartMetrics) IncOutOfStock() {
	if c == nil || c.outOfStock == nil {
		return
	}
	c.outOfStock.Inc()
}

// IncCheckout counts one checkout attempt by outcome.
func (c *CartMetrics) IncCheckout(outcome string) {
	if c == nil || c.checkouts == nil {
		return
	}
	c.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveCartSize records the total item count after a mutation.
func (c *CartMetrics) ObserveCartSize(totalItems int) {
	if c == nil || c.cartItems == nil {
		return
	}
	c.cartItems.Observe(float64(totalItems))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
