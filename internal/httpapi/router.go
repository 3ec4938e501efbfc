// Package httpapi exposes the service layer as a JSON HTTP API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/nestsplit/nestsplit/internal/auth"
	"github.com/nestsplit/nestsplit/internal/middleware"
	"github.com/nestsplit/nestsplit/internal/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	auth          *service.AuthService
	households    *service.HouseholdService
	expenses      *service.ExpenseService
	subscriptions *service.SubscriptionService
	notifications *service.NotificationService
	jwtManager    *auth.JWTManager
	metrics       *middleware.Metrics
	validator     *validator.Validate
}

// NewHandler constructs the API handler.
func NewHandler(
	authService *service.AuthService,
	households *service.HouseholdService,
	expenses *service.ExpenseService,
	subscriptions *service.SubscriptionService,
	notifications *service.NotificationService,
	jwtManager *auth.JWTManager,
	metrics *middleware.Metrics,
) *Handler {
	return &Handler{
		auth:          authService,
		households:    households,
		expenses:      expenses,
		subscriptions: subscriptions,
		notifications: notifications,
		jwtManager:    jwtManager,
		metrics:       metrics,
		validator:     validator.New(),
	}
}

// Router builds the full route tree, middleware included.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(h.metrics.Instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", h.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Credential endpoints are brute-forceable; rate limit by IP.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(20, time.Minute))
			r.Post("/auth/register", h.handleRegister)
			r.Post("/auth/login", h.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtManager))

			r.Get("/me", h.handleCurrentUser)

			r.Post("/preview", h.handlePreview)

			r.Route("/households", func(r chi.Router) {
				r.Post("/", h.handleCreateHousehold)
				r.Get("/", h.handleListHouseholds)

				r.Route("/{householdID}", func(r chi.Router) {
					r.Get("/", h.handleGetHousehold)
					r.Delete("/", h.handleDissolveHousehold)

					r.Get("/members", h.handleListMembers)
					r.Post("/members", h.handleAddMember)
					r.Delete("/members/{userID}", h.handleRemoveMember)
					r.Put("/members/{userID}/role", h.handleSetRole)
					r.Post("/leave", h.handleLeave)
					r.Post("/audits", h.handleRecordAudit)

					r.Get("/entries", h.handleListEntries)
					r.Post("/entries", h.handleCreateEntry)

					r.Get("/balances", h.handleBalances)
					r.Get("/settlement", h.handleSettlementPlan)
					r.Get("/settlement/export.csv", h.handleSettlementCSV)

					r.Get("/subscriptions", h.handleListSubscriptions)
					r.Post("/subscriptions", h.handleCreateSubscription)
				})
			})

			r.Route("/entries/{entryID}", func(r chi.Router) {
				r.Get("/", h.handleGetEntry)
				r.Put("/", h.handleUpdateEntry)
				r.Delete("/", h.handleDeleteEntry)
			})

			r.Route("/subscriptions/{subscriptionID}", func(r chi.Router) {
				r.Get("/", h.handleGetSubscription)
				r.Put("/", h.handleUpdateSubscription)
				r.Delete("/", h.handleDeleteSubscription)
			})

			r.Get("/notifications", h.handleListNotifications)
			r.Post("/notifications/{notificationID}/read", h.handleMarkNotificationRead)
		})
	})

	return r
}
