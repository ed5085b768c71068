package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockpinghq/stockping-backend/api/controllers"
	"github.com/stockpinghq/stockping-backend/api/middleware"
	"github.com/stockpinghq/stockping-backend/internal/digest"
	"github.com/stockpinghq/stockping-backend/pkg/config"
	"github.com/stockpinghq/stockping-backend/pkg/enums"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type digestRunner interface {
	Run(ctx context.Context, frequency enums.DigestFrequency) (*digest.Result, error)
}

// RouterParams wires the worker's operational HTTP surface.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      pinger
	Redis   pinger
	Digest  digestRunner
	Metrics prometheus.Gatherer
}

// NewRouter builds the worker's HTTP handler: health probes, Prometheus
// metrics, and the admin digest trigger.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	gatherer := params.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminToken(cfg.Admin, logg))
		r.Post("/digest/run", controllers.DigestRunNow(params.Digest, logg))
	})

	return r
}
