// Package metrics provides optional Prometheus instrumentation for
// the server-level counters the connection state machine and worker pool
// pass through: accepted connections, requests, and parse/send/accept
// errors. A response-bytes counter is registered too; it advances only
// through ResponseBytes, which the server package does not call.
// Registration is opt-in (config.Config.MetricsEnabled) — an App that
// never enables it pays no promauto registration cost.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors holds every metric this package registers. A nil
// *Collectors is valid and every method on it is a no-op, so call sites
// don't need a feature-flag check at each instrumentation point.
type Collectors struct {
	connectionsTotal  prometheus.Counter
	connectionsActive prometheus.Gauge
	requestsTotal     *prometheus.CounterVec
	parseErrorsTotal  prometheus.Counter
	sendErrorsTotal   prometheus.Counter
	acceptErrorsTotal prometheus.Counter
	responseBytes     prometheus.Counter
}

// New registers and returns the kiln metric collectors against the
// default Prometheus registry.
func New() *Collectors {
	return &Collectors{
		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kiln",
			Name:      "connections_total",
			Help:      "Total number of accepted connections.",
		}),
		connectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "kiln",
			Name:      "connections_active",
			Help:      "Number of connections currently being served.",
		}),
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiln",
			Name:      "requests_total",
			Help:      "Total number of requests handled, by method.",
		}, []string{"method"}),
		parseErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kiln",
			Name:      "parse_errors_total",
			Help:      "Total number of request parse errors.",
		}),
		sendErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kiln",
			Name:      "send_errors_total",
			Help:      "Total number of response send errors.",
		}),
		acceptErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kiln",
			Name:      "accept_errors_total",
			Help:      "Total number of listener accept errors.",
		}),
		responseBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "kiln",
			Name:      "response_bytes_total",
			Help:      "Total bytes written across all response bodies.",
		}),
	}
}

func (c *Collectors) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsTotal.Inc()
	c.connectionsActive.Inc()
}

func (c *Collectors) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Dec()
}

func (c *Collectors) RequestHandled(method string) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(method).Inc()
}

func (c *Collectors) ParseError() {
	if c == nil {
		return
	}
	c.parseErrorsTotal.Inc()
}

func (c *Collectors) SendError() {
	if c == nil {
		return
	}
	c.sendErrorsTotal.Inc()
}

func (c *Collectors) AcceptError() {
	if c == nil {
		return
	}
	c.acceptErrorsTotal.Inc()
}

func (c *Collectors) ResponseBytes(n int) {
	if c == nil {
		return
	}
	c.responseBytes.Add(float64(n))
}
