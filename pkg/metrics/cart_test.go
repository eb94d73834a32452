package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCartMetricsCount(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCartMetrics(reg)

	m.IncOperation("add_item")
	m.IncOperation("add_item")
	m.IncOperation("")
	m.IncOutOfStock()
	m.IncCheckout("success")
	m.ObserveCartSize(3)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("add_item")); got != 2 {
		t.Fatalf("expected 2 add_item ops, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty op to count as unknown, got %v", got)
	}
	if got := testutil.ToFloat64(m.outOfStock); got != 1 {
		t.Fatalf("expected 1 out-of-stock, got %v", got)
	}
}

func TestNilSafeWithoutRegisterer(t *testing.T) {
	t.Parallel()

	m := NewCartMetrics(nil)
	m.IncOperation("add_item")
	m.IncOutOfStock()
	m.IncCheckout("failed")
	m.ObserveCartSize(1)

	var empty *CartMetrics
	empty.IncOperation("noop")
}
