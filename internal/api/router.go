package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"crm-bridge/internal/config"
	"crm-bridge/internal/crm"
	"crm-bridge/internal/token"
)

// NewRouter creates a new HTTP router
func NewRouter(cfg *config.Config, registry *crm.Registry, tokens *token.Manager) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(SecurityHeadersMiddleware(cfg))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// OAuth flow: login redirect plus provider callback. Rate limited
	// since each callback fans out to a provider token endpoint.
	authLimiter := NewRateLimiter(1, 10)
	authLimiter.CleanupOldLimiters()

	r.Route("/auth", func(r chi.Router) {
		r.Use(RateLimitMiddleware(authLimiter))

		r.Get("/{provider}/login", HandleProviderLogin(registry))
		r.Get("/{provider}/callback", HandleProviderCallback(tokens))
	})

	// Windowed read endpoints per provider
	r.Route("/crm/{provider}", func(r chi.Router) {
		r.Get("/contacts", HandleListContacts(registry))
		r.Get("/companies", HandleListCompanies(registry))
		r.Get("/deals", HandleListDeals(registry))
	})

	// Unified push endpoints dispatching on the body's crm tag
	r.Route("/push", func(r chi.Router) {
		r.Post("/contact", HandlePushContact(registry))
		r.Put("/contact", HandleUpdateContact(registry))
		r.Post("/company", HandlePushCompany(registry))
		r.Put("/company", HandleUpdateCompany(registry))
		r.Post("/deal", HandlePushDeal(registry))
		r.Put("/deal", HandleUpdateDeal(registry))
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
