package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/clinic-webhooks/internal/tenant"
	"github.com/marcelsud/clinic-webhooks/webhook"
	"github.com/rs/zerolog"
)

const requestTimeout = 30 * time.Second

type options struct {
	tenantHeader string
	metrics      http.Handler
	accessLog    *zerolog.Logger
}

// Option configures the router
type Option func(*options)

// WithTenantHeader sets the header carrying the tenant id
func WithTenantHeader(header string) Option {
	return func(o *options) { o.tenantHeader = header }
}

// WithMetrics mounts a Prometheus handler on /metrics
func WithMetrics(h http.Handler) Option {
	return func(o *options) { o.metrics = h }
}

// WithAccessLog replaces the default JSON request logger
func WithAccessLog(l zerolog.Logger) Option {
	return func(o *options) { o.accessLog = &l }
}

// Handlers sets up the webhook API routes
func Handlers(ctx context.Context, subscriptions webhook.SubscriptionUseCase, deliveries webhook.DeliveryUseCase, publisher webhook.EventPublisher, opts ...Option) *chi.Mux {
	o := options{tenantHeader: tenant.DefaultHeader}
	for _, opt := range opts {
		opt(&o)
	}

	logger := httplog.NewLogger("clinic-webhooks", httplog.Options{
		JSON: true,
	})
	if o.accessLog != nil {
		logger = *o.accessLog
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	if o.metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.metrics)
	}

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(tenant.Middleware(o.tenantHeader, missingTenant))

		r.Method(http.MethodPost, "/", postSubscription(subscriptions))
		r.Method(http.MethodGet, "/", getSubscriptions(subscriptions))

		r.Method(http.MethodGet, "/events", getEvents())
		r.Method(http.MethodPost, "/events", postEvent(publisher))

		r.Method(http.MethodGet, "/deliveries/{id}", getDelivery(deliveries))
		r.Method(http.MethodPost, "/deliveries/{id}/retry", retryDelivery(deliveries))

		r.Method(http.MethodGet, "/{id}", getSubscription(subscriptions))
		r.Method(http.MethodPut, "/{id}", putSubscription(subscriptions))
		r.Method(http.MethodDelete, "/{id}", deleteSubscription(subscriptions))
		r.Method(http.MethodPost, "/{id}/activate", activateSubscription(subscriptions))
		r.Method(http.MethodPost, "/{id}/deactivate", deactivateSubscription(subscriptions))
		r.Method(http.MethodPost, "/{id}/regenerate-secret", regenerateSecret(subscriptions))
		r.Method(http.MethodGet, "/{id}/deliveries", getDeliveries(deliveries))
	})

	return r
}
