package telemock

import (
	"time"

	"github.com/maxbolgarin/lang"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultSubsystem = "telemock"

// LongPollWaitBuckets covers waits from near-instant delivery up to the
// 30 second long poll cap.
var LongPollWaitBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30}

// MetricsConfig enables Prometheus metrics. With a nil Registry all
// metric calls are no-ops.
type MetricsConfig struct {
	Registry    *prometheus.Registry
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
}

// metrics holds the emulator's Prometheus instruments.
type metrics struct {
	MetricsConfig

	apiRequestsTotal       *prometheus.CounterVec
	messagesTotal          *prometheus.CounterVec
	updatesEnqueuedTotal   prometheus.Counter
	updatesDeliveredTotal  prometheus.Counter
	queueDepth             prometheus.Gauge
	longPollWaitSeconds    prometheus.Histogram
	historyEntriesArchived prometheus.Counter

	disabled bool
}

// newMetrics creates the instrument set. A nil registry yields a disabled
// instance whose methods do nothing.
func newMetrics(config MetricsConfig) *metrics {
	if config.Registry == nil {
		return &metrics{disabled: true}
	}

	m := &metrics{MetricsConfig: config}

	m.apiRequestsTotal = m.newCounter("api_requests_total", "Total number of simulated API calls by method", "method")
	m.messagesTotal = m.newCounter("messages_total", "Total number of messages recorded in history by direction", "direction")
	m.updatesEnqueuedTotal = m.newSimpleCounter("updates_enqueued_total", "Total number of updates put on the queue")
	m.updatesDeliveredTotal = m.newSimpleCounter("updates_delivered_total", "Total number of updates handed to getUpdates callers")
	m.queueDepth = m.newSimpleGauge("queue_depth", "Number of updates currently waiting in the queue")
	m.longPollWaitSeconds = m.newSimpleHistogram("long_poll_wait_seconds", "Time getUpdates callers spent waiting for an update", LongPollWaitBuckets)
	m.historyEntriesArchived = m.newSimpleCounter("history_entries_archived_total", "Total number of history entries handed to the archiver")

	return m
}

func (m *metrics) incAPIRequest(method string) {
	if m == nil || m.disabled {
		return
	}
	m.apiRequestsTotal.WithLabelValues(method).Inc()
}

func (m *metrics) incMessage(direction Direction) {
	if m == nil || m.disabled {
		return
	}
	m.messagesTotal.WithLabelValues(string(direction)).Inc()
}

func (m *metrics) incEnqueued(queueLen int) {
	if m == nil || m.disabled {
		return
	}
	m.updatesEnqueuedTotal.Inc()
	m.queueDepth.Set(float64(queueLen))
}

func (m *metrics) addDelivered(n, queueLen int) {
	if m == nil || m.disabled {
		return
	}
	m.updatesDeliveredTotal.Add(float64(n))
	m.queueDepth.Set(float64(queueLen))
}

func (m *metrics) observeLongPollWait(d time.Duration) {
	if m == nil || m.disabled {
		return
	}
	m.longPollWaitSeconds.Observe(d.Seconds())
}

func (m *metrics) incArchived() {
	if m == nil || m.disabled {
		return
	}
	m.historyEntriesArchived.Inc()
}

// newCounter creates and registers a CounterVec under the configured
// namespace and subsystem.
func (m *metrics) newCounter(name, help string, labelNames ...string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.Namespace,
			Subsystem:   lang.Check(m.Subsystem, defaultSubsystem),
			Name:        name,
			Help:        help,
			ConstLabels: m.ConstLabels,
		},
		labelNames,
	)
	m.Registry.MustRegister(counter)
	return counter
}

func (m *metrics) newSimpleCounter(name, help string) prometheus.Counter {
	counter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   m.Namespace,
			Subsystem:   lang.Check(m.Subsystem, defaultSubsystem),
			Name:        name,
			Help:        help,
			ConstLabels: m.ConstLabels,
		},
	)
	m.Registry.MustRegister(counter)
	return counter
}

func (m *metrics) newSimpleGauge(name, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   m.Namespace,
			Subsystem:   lang.Check(m.Subsystem, defaultSubsystem),
			Name:        name,
			Help:        help,
			ConstLabels: m.ConstLabels,
		},
	)
	m.Registry.MustRegister(gauge)
	return gauge
}

func (m *metrics) newSimpleHistogram(name, help string, buckets []float64) prometheus.Histogram {
	histogram := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   m.Namespace,
			Subsystem:   lang.Check(m.Subsystem, defaultSubsystem),
			Name:        name,
			Help:        help,
			ConstLabels: m.ConstLabels,
			Buckets:     buckets,
		},
	)
	m.Registry.MustRegister(histogram)
	return histogram
}
