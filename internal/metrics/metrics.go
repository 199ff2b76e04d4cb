// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "story_mcp"

var (
	toolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_invocations_total",
		Help:      "Tool calls by tool, transport and outcome.",
	}, []string{"tool", "transport", "status"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tool_duration_seconds",
		Help:      "Tool call latency. Writes include receipt waits.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"tool", "transport"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	chainTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_transactions_total",
		Help:      "Contract writes by method and outcome.",
	}, []string{"method", "status"})

	ipfsPins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ipfs_pins_total",
		Help:      "IPFS pin attempts by document kind and outcome.",
	}, []string{"kind", "status"})
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func ObserveTool(tool, transport string, err error, elapsed time.Duration) {
	toolInvocations.WithLabelValues(tool, transport, status(err)).Inc()
	toolDuration.WithLabelValues(tool, transport).Observe(elapsed.Seconds())
}

func ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ObserveChainTransaction(method string, err error) {
	chainTransactions.WithLabelValues(method, status(err)).Inc()
}

func ObservePin(kind string, err error) {
	ipfsPins.WithLabelValues(kind, status(err)).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
