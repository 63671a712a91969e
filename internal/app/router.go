package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/warta-media/warta/internal/ads"
	"github.com/warta-media/warta/internal/articles"
	"github.com/warta-media/warta/internal/auth"
	"github.com/warta-media/warta/internal/categories"
	"github.com/warta-media/warta/internal/comments"
	"github.com/warta-media/warta/internal/newspapers"
	"github.com/warta-media/warta/internal/observability"
	"github.com/warta-media/warta/internal/users"
	"github.com/warta-media/warta/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	ArticlesHandler   *articles.Handler
	CategoriesHandler *categories.Handler
	NewspapersHandler *newspapers.Handler
	AdsHandler        *ads.Handler
	CommentsHandler   *comments.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Warta defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(AuthRateLimit())
		params.AuthHandler.MountRoutes(r)
	})
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/articles", params.ArticlesHandler.MountRoutes)
	r.Route("/categories", params.CategoriesHandler.MountRoutes)
	r.Route("/newspapers", params.NewspapersHandler.MountRoutes)
	r.Route("/ads", params.AdsHandler.MountRoutes)
	r.Route("/comments", params.CommentsHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
