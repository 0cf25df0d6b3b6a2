package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Reconciliations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "reconciliations_total",
		Help:      "Stock reconciliation operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "inventory",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(Reconciliations, HTTPRequests, HTTPDuration)
}

// ObserveReconciliation counts one engine operation.
func ObserveReconciliation(operation, outcome string) {
	Reconciliations.WithLabelValues(operation, outcome).Inc()
}

// Middleware records request count and latency keyed by the matched route
// pattern, so ids in paths do not explode label cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
