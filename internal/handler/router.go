package handler

import (
	"net/http"
	"time"

	"vault/internal/middleware"

	"github.com/go-chi/httprate"
)

// RouterConfig collects the handlers mounted by NewRouter
type RouterConfig struct {
	Auth          *AuthHandler
	Documents     *DocumentHandler
	Tags          *TagHandler
	Import        *ImportHandler
	System        *SystemHandler
	Authenticator middleware.Authenticator

	// AuthRateLimit is the per-IP request budget per minute on the public auth routes; 0 disables it
	AuthRateLimit int
}

// NewRouter registers every API route on a new ServeMux
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	protected := middleware.RequireAuth(cfg.Authenticator)
	authed := func(h http.HandlerFunc) http.Handler { return protected(h) }

	limited := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.AuthRateLimit > 0 {
		limiter := httprate.LimitByIP(cfg.AuthRateLimit, time.Minute)
		limited = func(h http.HandlerFunc) http.Handler { return limiter(h) }
	}

	// System
	mux.HandleFunc("GET /health", cfg.System.Health)
	mux.HandleFunc("GET /api/v1/health", cfg.System.Health)
	mux.Handle("GET /api/v1/stats", authed(cfg.System.Stats))

	// Auth
	mux.Handle("POST /api/v1/auth/register", limited(cfg.Auth.Register))
	mux.Handle("POST /api/v1/auth/login", limited(cfg.Auth.Login))
	mux.Handle("POST /api/v1/auth/refresh", limited(cfg.Auth.Refresh))
	mux.Handle("POST /api/v1/auth/logout", authed(cfg.Auth.Logout))
	mux.Handle("GET /api/v1/auth/me", authed(cfg.Auth.Me))
	mux.Handle("PATCH /api/v1/auth/me", authed(cfg.Auth.UpdateMe))
	mux.Handle("POST /api/v1/auth/password", authed(cfg.Auth.ChangePassword))

	// Documents
	mux.Handle("GET /api/v1/documents", authed(cfg.Documents.ListDocuments))
	mux.Handle("POST /api/v1/documents", authed(cfg.Documents.CreateDocument))
	mux.Handle("POST /api/v1/documents/import", authed(cfg.Import.Import))
	mux.Handle("GET /api/v1/documents/{id}", authed(cfg.Documents.GetDocument))
	mux.Handle("PATCH /api/v1/documents/{id}", authed(cfg.Documents.UpdateDocument))
	mux.Handle("DELETE /api/v1/documents/{id}", authed(cfg.Documents.DeleteDocument))
	mux.Handle("POST /api/v1/documents/{id}/archive", authed(cfg.Documents.Archive(true)))
	mux.Handle("POST /api/v1/documents/{id}/unarchive", authed(cfg.Documents.Archive(false)))
	mux.Handle("POST /api/v1/documents/{id}/pin", authed(cfg.Documents.Pin(true)))
	mux.Handle("POST /api/v1/documents/{id}/unpin", authed(cfg.Documents.Pin(false)))

	// Tags
	mux.Handle("GET /api/v1/tags", authed(cfg.Tags.ListTags))
	mux.Handle("PATCH /api/v1/tags/{id}", authed(cfg.Tags.UpdateTag))
	mux.Handle("DELETE /api/v1/tags/{id}", authed(cfg.Tags.DeleteTag))

	return mux
}
