package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orientis/orientis/internal/auth"
)

// RouterConfig bundles the handlers mounted by NewRouter.
type RouterConfig struct {
	Auth        *AuthHandlers
	University  *UniversityHandlers
	Program     *ProgramHandlers
	Search      *SearchHandlers
	Orientation *OrientationHandlers
	Upload      *UploadHandlers
	Profile     *ProfileHandlers
	Health      *HealthHandlers
	JWTService  *auth.JWTService

	// MetricsHandler serves GET /metrics; nil disables the endpoint.
	MetricsHandler http.Handler
}

// NewRouter builds the ServeMux with all API routes. Authentication and
// authorization are applied per route: catalog reads and search are public,
// catalog writes are admin only, and the orientation test requires a logged-in
// user.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	authed := RequireAuth(cfg.JWTService)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(RequireAdmin(h))
	}

	// Probes and metrics
	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	// Authentication
	mux.HandleFunc("POST /auth/register", cfg.Auth.Register)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)
	mux.HandleFunc("POST /auth/refresh", cfg.Auth.Refresh)
	mux.Handle("GET /me", authed(http.HandlerFunc(cfg.Auth.Me)))
	mux.Handle("PUT /me", authed(http.HandlerFunc(cfg.Profile.UpdateMe)))

	// Saved catalog entries
	mux.Handle("GET /me/saved-items", authed(http.HandlerFunc(cfg.Profile.SavedItems)))
	mux.Handle("GET /me/saved-programs", authed(http.HandlerFunc(cfg.Profile.SavedPrograms)))
	mux.Handle("POST /me/saved-programs", authed(http.HandlerFunc(cfg.Profile.SaveProgram)))
	mux.Handle("DELETE /me/saved-programs/{id}", authed(http.HandlerFunc(cfg.Profile.RemoveSavedProgram)))
	mux.Handle("GET /me/saved-universities", authed(http.HandlerFunc(cfg.Profile.SavedUniversities)))
	mux.Handle("POST /me/saved-universities", authed(http.HandlerFunc(cfg.Profile.SaveUniversity)))
	mux.Handle("DELETE /me/saved-universities/{id}", authed(http.HandlerFunc(cfg.Profile.RemoveSavedUniversity)))

	// Catalog
	mux.HandleFunc("GET /universities", cfg.University.List)
	mux.HandleFunc("GET /universities/{id}", cfg.University.Get)
	mux.Handle("POST /universities", admin(cfg.University.Create))
	mux.Handle("PUT /universities/{id}", admin(cfg.University.Update))
	mux.Handle("DELETE /universities/{id}", admin(cfg.University.Delete))

	mux.HandleFunc("GET /programs", cfg.Program.List)
	mux.HandleFunc("GET /programs/{id}", cfg.Program.Get)
	mux.Handle("POST /programs", admin(cfg.Program.Create))
	mux.Handle("PUT /programs/{id}", admin(cfg.Program.Update))
	mux.Handle("DELETE /programs/{id}", admin(cfg.Program.Delete))

	// Search
	mux.HandleFunc("GET /search", cfg.Search.Search)

	// Orientation test
	mux.Handle("GET /tests/questions", authed(http.HandlerFunc(cfg.Orientation.Questions)))
	mux.Handle("POST /tests/submit", authed(http.HandlerFunc(cfg.Orientation.Submit)))
	mux.Handle("GET /tests/results/{id}", authed(http.HandlerFunc(cfg.Orientation.Result)))
	mux.Handle("GET /tests/my-results", authed(http.HandlerFunc(cfg.Orientation.MyResults)))

	// Uploads
	mux.Handle("POST /uploads/transcript", authed(http.HandlerFunc(cfg.Upload.SignedURL)))
	mux.Handle("DELETE /uploads/transcript", authed(http.HandlerFunc(cfg.Upload.Delete)))

	return mux
}

// DefaultMetricsHandler returns the promhttp handler for the default registry.
func DefaultMetricsHandler() http.Handler {
	return promhttp.Handler()
}
