package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/newsdash/internal/api/middleware"
	"github.com/kiranshivaraju/newsdash/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
// Auth and RateLimit are optional; a nil value disables that layer.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler   http.HandlerFunc
	StateHandler    http.HandlerFunc
	RefreshHandler  http.HandlerFunc
	CategoryHandler http.HandlerFunc
	DateHandler     http.HandlerFunc
	ScoreHandler    http.HandlerFunc
	SortHandler     http.HandlerFunc
	TrustHandler    http.HandlerFunc
	NextPageHandler http.HandlerFunc
	PrevPageHandler http.HandlerFunc
	CollectHandler  http.HandlerFunc
	ClipHandler     http.HandlerFunc
	UnclipHandler   http.HandlerFunc
	ClipsHandler    http.HandlerFunc
	SearchHandler   http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/ui/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Authenticate)
		}
		if deps.RateLimit != nil {
			r.Use(mw.Identify)
			r.Use(deps.RateLimit.Limit)
		}

		r.Get("/ui/state", orNotImplemented(deps.StateHandler))
		r.Post("/ui/refresh", orNotImplemented(deps.RefreshHandler))

		r.Route("/ui/filters", func(r chi.Router) {
			r.Put("/category", orNotImplemented(deps.CategoryHandler))
			r.Put("/date", orNotImplemented(deps.DateHandler))
			r.Put("/score", orNotImplemented(deps.ScoreHandler))
			r.Put("/sort", orNotImplemented(deps.SortHandler))
			r.Post("/trust/{level}", orNotImplemented(deps.TrustHandler))
		})

		r.Post("/ui/page/next", orNotImplemented(deps.NextPageHandler))
		r.Post("/ui/page/prev", orNotImplemented(deps.PrevPageHandler))

		r.Post("/ui/collect", orNotImplemented(deps.CollectHandler))

		r.Post("/ui/articles/{id}/clip", orNotImplemented(deps.ClipHandler))
		r.Delete("/ui/articles/{id}/clip", orNotImplemented(deps.UnclipHandler))
		r.Get("/ui/clips", orNotImplemented(deps.ClipsHandler))

		r.Post("/ui/search", orNotImplemented(deps.SearchHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
