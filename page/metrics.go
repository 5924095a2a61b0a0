package page

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/skbidisigma1/groupme-cli/metric"
)

// Metrics holds Prometheus metrics for the paginated fetcher. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	pagesFetched   prometheus.Counter
	itemsCollected prometheus.Counter
	fetchErrors    prometheus.Counter
}

// NewMetrics creates and registers fetcher metrics under componentName
func NewMetrics(registry *metric.Registry, componentName string) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "page",
			Name:        "pages_fetched_total",
			Help:        "Total pages fetched from the REST collection",
			ConstLabels: prometheus.Labels{"component": componentName},
		}),
		itemsCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "page",
			Name:        "items_collected_total",
			Help:        "Total items returned across all fetched pages",
			ConstLabels: prometheus.Labels{"component": componentName},
		}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "page",
			Name:        "fetch_errors_total",
			Help:        "Total failed page fetches",
			ConstLabels: prometheus.Labels{"component": componentName},
		}),
	}

	registry.MustRegister(componentName, "pages_fetched", m.pagesFetched)
	registry.MustRegister(componentName, "items_collected", m.itemsCollected)
	registry.MustRegister(componentName, "fetch_errors", m.fetchErrors)

	return m
}

func (m *Metrics) trackPage(items int) {
	if m == nil {
		return
	}
	m.pagesFetched.Inc()
	m.itemsCollected.Add(float64(items))
}

func (m *Metrics) trackError() {
	if m == nil {
		return
	}
	m.fetchErrors.Inc()
}
