package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"majaz-portal/internal/api/handler"
	"majaz-portal/internal/auth"
	"majaz-portal/internal/logger"
	"majaz-portal/internal/repository"
)

type Config struct {
	Host            string        `env:"HTTP_HOST" env-required:"true"`
	Port            int           `env:"HTTP_PORT" env-required:"true"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-required:"true"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `env:"HTTP_CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

// Deps is everything the router hands to handlers.
type Deps struct {
	Repo           repository.Repository
	Team           handler.TeamLister
	Payments       handler.PaymentCreator
	Verifier       handler.EventVerifier
	Events         handler.EventHandler
	Contact        handler.ContactNotifier
	Auth           *auth.Config
	PublishableKey string
	Metrics        prometheus.Gatherer
}

func NewRouter(deps Deps, log *zap.Logger, cfgLogger *logger.Config, cfg *Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.MiddlewareLogger(log, cfgLogger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		AllowCredentials: true,
	}).Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	srvTimeout := cfg.Timeout

	router.Route("/api", func(r chi.Router) {
		r.Get("/team", handler.ListTeam(deps.Team, srvTimeout, log))
		r.Get("/pricing", handler.GetPricing(deps.PublishableKey, log))
		r.Post("/contact", handler.SubmitContact(deps.Contact, srvTimeout, log))
		r.Post("/webhooks/stripe", handler.StripeWebhook(deps.Verifier, deps.Events, srvTimeout, log))

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.Auth, handler.Unauthorized(log)))

			r.Post("/requests", handler.CreateRequest(deps.Repo, srvTimeout, log))
			r.Get("/requests", handler.ListRequests(deps.Repo, srvTimeout, log))
			r.Get("/requests/stats", handler.RequestStats(deps.Repo, srvTimeout, log))
			r.Get("/requests/{id}", handler.GetRequest(deps.Repo, srvTimeout, log))
			r.Post("/create-payment-intent", handler.CreatePaymentIntent(deps.Repo, deps.Payments, srvTimeout, log))
		})
	})

	return router
}
