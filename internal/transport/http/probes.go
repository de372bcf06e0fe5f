package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/profiles-service/internal/transport/http/middleware"
)

// probeTimeout ограничивает /healthz вместе с пингом зависимостей.
const probeTimeout = 2 * time.Second

// Pinger — зависимость, проверяемая в /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterProbes вешает на mux служебные эндпойнты /livez, /healthz и /metrics.
// /healthz отвечает 200, только если ready выставлен и все deps отвечают на Ping.
func RegisterProbes(mux *http.ServeMux, ready *atomic.Bool, deps ...Pinger) {
	wrap := func(h http.Handler) http.Handler {
		return middleware.Chain(h, middleware.Recover(), middleware.Timeout(probeTimeout))
	}

	mux.Handle("/livez", wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})))

	mux.Handle("/healthz", wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		for _, d := range deps {
			if err := d.Ping(r.Context()); err != nil {
				http.Error(w, "dependency unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})))

	mux.Handle("/metrics", wrap(promhttp.Handler()))
}
