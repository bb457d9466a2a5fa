package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// Production turns on HTTPS redirects and secure cookies.
	Production bool
}

// NewRouter returns a chi router with the common middleware chain, /healthz
// and, when enabled, a token guarded /metrics. extra is appended to the chain,
// so it also wraps those two routes.
func NewRouter(opts RouterOptions, extra ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(Logging(opts.Log))
	r.Use(SecureHeaders(opts.Production, opts.Log))
	r.Use(chimw.Compress(5))

	var metrics *Metrics
	if opts.Registry != nil {
		metrics = NewMetrics(opts.Registry)
		r.Use(metrics.Middleware(opts.Service, RouteLabel))
	}
	r.Use(extra...)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	if metrics != nil && opts.MetricsEnabled {
		r.With(MetricsAuth(opts.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	return r
}
