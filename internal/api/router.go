// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"money-transfer-api/internal/api/handler"
	"money-transfer-api/internal/api/types"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Transaction *handler.TransactionHandler
	Webhook     *handler.WebhookHandler
}

// Middlewares groups the route-level middlewares. Nil entries are skipped.
type Middlewares struct {
	Authenticate  func(http.Handler) http.Handler
	Idempotency   func(http.Handler) http.Handler
	AuthRateLimit func(http.Handler) http.Handler
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, mw Middlewares, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID", "X-Webhook-Secret"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Idempotency-Replayed", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = types.WriteError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = types.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = types.WriteJSON(w, http.StatusOK, types.Response{
			Success: true,
			Message: "Service is healthy",
			Data:    map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)},
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(optional(mw.AuthRateLimit))
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
		})

		r.Post("/webhooks/deposit", h.Webhook.HandleDeposit)

		r.Group(func(r chi.Router) {
			r.Use(optional(mw.Authenticate))

			r.Get("/users/profile", h.User.GetProfile)
			r.Post("/users/virtual-account", h.User.GenerateVirtualAccount)

			r.Route("/transactions", func(r chi.Router) {
				r.With(optional(mw.Idempotency)).Post("/transfer", h.Transaction.InitiateTransfer)
				r.Get("/", h.Transaction.GetTransactionHistory)
				r.Get("/{id}", h.Transaction.GetTransactionByID)
			})
		})
	})

	logger.Info("HTTP routes registered", "prefix", "/api/v1")
	return r
}

func optional(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
