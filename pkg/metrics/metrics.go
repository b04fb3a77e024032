// Package metrics exposes the Prometheus metrics of the browser over HTTP.
// The metrics themselves are declared with promauto in the packages that
// update them.
//
// Fetching (pkg/client):
//   - characters_requests_total{endpoint, status}
//   - characters_request_duration_seconds{endpoint}
//   - characters_errors_total{class}
//   - characters_retries_total{error_class}
//   - characters_retry_backoff_seconds{error_class}
//   - characters_retry_exhausted_total{error_class}
//
// Response cache (pkg/cache):
//   - characters_cache_lookups_total{backend, result}
//   - characters_cache_stored_bytes_total{backend}
//   - characters_304_responses_total, characters_conditional_requests_total
//   - characters_cache_errors_total{operation}
//
// Rate limiting (pkg/ratelimit):
//   - characters_rate_limit_remaining
//   - characters_rate_limit_blocks_total, characters_rate_limit_throttles_total
//
// Browser (pkg/view, pkg/events, pkg/favorites, pkg/pagination):
//   - characters_view_fetches_total{kind, outcome}
//   - characters_events_total{event, outcome}
//   - characters_favorite_toggles_total{action}, characters_favorites
//   - characters_prefetch_pages_total{outcome}
//
// Example queries:
//
//	# Share of lookups answered without a request
//	sum(rate(characters_cache_lookups_total{result="fresh"}[5m])) /
//	sum(rate(characters_cache_lookups_total[5m]))
//
//	# Stale fetch results dropped by the view
//	rate(characters_view_fetches_total{outcome="stale"}[5m])
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry is where every promauto metric of the module is registered.
var Registry = prometheus.DefaultRegisterer

// Gatherer is read by Handler.
var Gatherer = prometheus.DefaultGatherer

// Path is the scrape endpoint.
const Path = "/metrics"

// Handler returns the scrape handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Serve exposes Handler on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(Path, Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
