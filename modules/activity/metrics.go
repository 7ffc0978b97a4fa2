package activity

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chat"

// Metrics holds the Prometheus collectors for chat activity. Each instance
// owns its registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	messages      prometheus.Counter
	messageBytes  prometheus.Counter
	joins         prometheus.Counter
	departures    *prometheus.CounterVec
	roomsCreated  prometheus.Counter
	roomsDeleted  prometheus.Counter
	roomsActive   prometheus.Gauge
	occupants     prometheus.Gauge
	framesDropped prometheus.Counter
	fanoutSize    prometheus.Histogram
}

// NewMetrics creates and registers the chat collectors plus the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Chat messages broadcast to rooms.",
		}),
		messageBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_bytes_total",
			Help:      "Bytes of chat message text broadcast to rooms.",
		}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Successful room joins.",
		}),
		departures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "departures_total",
			Help:      "Room departures by reason (leave or disconnect).",
		}, []string{"reason"}),
		roomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created.",
		}),
		roomsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_deleted_total",
			Help:      "Rooms deleted after their last occupant departed.",
		}),
		roomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms currently in the directory.",
		}),
		occupants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_occupants",
			Help:      "Connections currently bound to a room.",
		}),
		framesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Outbound frames dropped because a client's send queue was full.",
		}),
		fanoutSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_fanout_recipients",
			Help:      "Recipients per broadcast chat message.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.messages,
		m.messageBytes,
		m.joins,
		m.departures,
		m.roomsCreated,
		m.roomsDeleted,
		m.roomsActive,
		m.occupants,
		m.framesDropped,
		m.fanoutSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// FrameDropped counts a frame the hub could not enqueue.
func (m *Metrics) FrameDropped(_ string) {
	m.framesDropped.Inc()
}

func (m *Metrics) messageSent(length, recipients int) {
	m.messages.Inc()
	m.messageBytes.Add(float64(length))
	m.fanoutSize.Observe(float64(recipients))
}

func (m *Metrics) joined() {
	m.joins.Inc()
	m.occupants.Inc()
}

func (m *Metrics) departed(reason string) {
	m.departures.WithLabelValues(reason).Inc()
	m.occupants.Dec()
}

func (m *Metrics) roomCreated() {
	m.roomsCreated.Inc()
	m.roomsActive.Inc()
}

func (m *Metrics) roomDeleted() {
	m.roomsDeleted.Inc()
	m.roomsActive.Dec()
}
