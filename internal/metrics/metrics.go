// Package metrics provides Prometheus instrumentation for the DeepSource
// GraphQL client. Metrics are registered on the default registry via
// promauto and exposed only when the server runs in HTTP mode.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deepsource_graphql_requests_total",
		Help: "GraphQL requests by operation and outcome status.",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "deepsource_graphql_request_duration_seconds",
		Help:    "GraphQL request duration by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// ObserveRequest records one GraphQL request. Status is the HTTP status code
// or a coarse failure class (network_error, read_error).
func ObserveRequest(operation, status string, d time.Duration) {
	requestsTotal.WithLabelValues(operation, status).Inc()
	requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs a standalone HTTP server exposing /metrics until ctx is
// cancelled. Useful in stdio mode, where no other HTTP listener exists.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
