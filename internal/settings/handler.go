package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// Handler exposes store settings as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler wires the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountPublic attaches the storefront read route.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/settings", h.get)
}

// MountAdmin attaches the admin mutation routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Put("/settings/name", h.setName)
	r.Put("/settings/slider", h.saveSlider)
	r.Post("/settings/clear-all", h.clearAll)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	var (
		name   string
		slider []string
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		name, err = h.service.StoreName(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		slider, err = h.service.SliderImages(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"storeName":    name,
		"sliderImages": slider,
	})
}

func (h *Handler) setName(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SetStoreName(r.Context(), body.Name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveSlider(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Images []string `json:"images"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	slots, err := h.service.SaveSliderImages(r.Context(), body.Images)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, slots)
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.ClearAll(r.Context(), func() bool { return body.Confirm }); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Warn("store data cleared via admin api")
	w.WriteHeader(http.StatusNoContent)
}
