package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vireo-shop/vireo/internal/bulk"
	"github.com/vireo-shop/vireo/internal/cart"
	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/featured"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
	"github.com/vireo-shop/vireo/internal/settings"
	"github.com/vireo-shop/vireo/internal/taxonomy"
	"github.com/vireo-shop/vireo/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	CatalogHandler  *catalog.Handler
	TaxonomyHandler *taxonomy.Handler
	FeaturedHandler *featured.Handler
	CartHandler     *cart.Handler
	BulkHandler     *bulk.Handler
	SettingsHandler *settings.Handler
	JobsClient      *jobs.Client
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with storefront defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		params.CatalogHandler.MountPublic(api)
		params.TaxonomyHandler.MountPublic(api)
		params.FeaturedHandler.MountPublic(api)
		params.SettingsHandler.MountPublic(api)
		api.Route("/cart", params.CartHandler.MountRoutes)
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(AdminOnly(params.Config.AdminToken))
		params.CatalogHandler.MountAdmin(admin)
		params.TaxonomyHandler.MountAdmin(admin)
		params.FeaturedHandler.MountAdmin(admin)
		params.SettingsHandler.MountAdmin(admin)
		params.BulkHandler.MountAdmin(admin)

		if params.JobsClient != nil {
			admin.Post("/export/artifacts", func(w http.ResponseWriter, r *http.Request) {
				payload := jobs.ArtifactExportPayload{OutputDir: params.Config.ExportDir}
				if _, err := params.JobsClient.EnqueueArtifactExport(r.Context(), payload); err != nil {
					params.Logger.Error("enqueue artifact export", slog.Any("error", err))
					httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "could not enqueue export")
					return
				}
				w.WriteHeader(http.StatusAccepted)
			})
		}
		if params.JobsHandler != nil {
			admin.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
