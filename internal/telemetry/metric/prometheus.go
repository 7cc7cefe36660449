package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "respkv"

// Command results used as the "result" label.
const (
	ResultOK    = "ok"
	ResultNil   = "nil"
	ResultError = "error"
)

// Registry holds all application metrics on a private prometheus.Registry.
type Registry struct {
	registry *prometheus.Registry

	// Connection metrics
	ConnectionsActive   prometheus.Gauge
	ConnectionsTotal    prometheus.Counter
	ConnectionsRejected *prometheus.CounterVec

	// Protocol metrics
	FramesTotal    *prometheus.CounterVec
	ProtocolErrors prometheus.Counter

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the Go runtime and process collectors
// plus all respkv metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open client connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total accepted client connections.",
		}),
		ConnectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Client connections refused before serving.",
		}, []string{"reason"}),
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames decoded from or encoded to clients.",
		}, []string{"direction"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Connections closed because of malformed input.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by name and result.",
		}, []string{"command", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution latency in seconds.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05, .1},
		}, []string{"command"}),
	}

	reg.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.ConnectionsRejected,
		r.FramesTotal,
		r.ProtocolErrors,
		r.CommandsTotal,
		r.CommandDuration,
	)
	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing r in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registerer exposes the underlying registry so other packages can add their
// own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// ConnectionOpened records an accepted connection.
func (r *Registry) ConnectionOpened() {
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
}

// ConnectionClosed records a finished connection.
func (r *Registry) ConnectionClosed() {
	r.ConnectionsActive.Dec()
}

// RecordRejected records a connection refused for reason.
func (r *Registry) RecordRejected(reason string) {
	r.ConnectionsRejected.WithLabelValues(reason).Inc()
}

// RecordFrameIn records a frame decoded from a client.
func (r *Registry) RecordFrameIn() {
	r.FramesTotal.WithLabelValues("in").Inc()
}

// RecordFrameOut records a frame written to a client.
func (r *Registry) RecordFrameOut() {
	r.FramesTotal.WithLabelValues("out").Inc()
}

// IncProtocolError records a connection dropped for malformed input.
func (r *Registry) IncProtocolError() {
	r.ProtocolErrors.Inc()
}

// RecordCommand records one executed command.
func (r *Registry) RecordCommand(command, result string, seconds float64) {
	r.CommandsTotal.WithLabelValues(command, result).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(seconds)
}
