package push

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/skbidisigma1/groupme-cli/metric"
)

// Metrics holds Prometheus metrics for the push session. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	framesReceived  prometheus.Counter
	eventsDelivered *prometheus.CounterVec
	malformedFrames prometheus.Counter
	sessionsOpen    prometheus.Gauge
}

// NewMetrics creates and registers push metrics under componentName
func NewMetrics(registry *metric.Registry, componentName string) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "push",
			Name:        "frames_received_total",
			Help:        "Total websocket frames received on the push channel",
			ConstLabels: prometheus.Labels{"component": componentName},
		}),
		eventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "push",
			Name:        "events_delivered_total",
			Help:        "Total events delivered to the consumer, by kind",
			ConstLabels: prometheus.Labels{"component": componentName},
		}, []string{"kind"}),
		malformedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "push",
			Name:        "malformed_frames_total",
			Help:        "Total frames or envelopes skipped as malformed",
			ConstLabels: prometheus.Labels{"component": componentName},
		}),
		sessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "push",
			Name:        "sessions_open",
			Help:        "Number of live push sessions",
			ConstLabels: prometheus.Labels{"component": componentName},
		}),
	}

	registry.MustRegister(componentName, "frames_received", m.framesReceived)
	registry.MustRegister(componentName, "events_delivered", m.eventsDelivered)
	registry.MustRegister(componentName, "malformed_frames", m.malformedFrames)
	registry.MustRegister(componentName, "sessions_open", m.sessionsOpen)

	return m
}

func (m *Metrics) trackFrame() {
	if m == nil {
		return
	}
	m.framesReceived.Inc()
}

func (m *Metrics) trackEvent(kind EventKind) {
	if m == nil {
		return
	}
	m.eventsDelivered.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) trackMalformed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.malformedFrames.Add(float64(n))
}

func (m *Metrics) trackSessionOpen() {
	if m == nil {
		return
	}
	m.sessionsOpen.Inc()
}

func (m *Metrics) trackSessionClose() {
	if m == nil {
		return
	}
	m.sessionsOpen.Dec()
}
