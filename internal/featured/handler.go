package featured

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// Handler exposes the featured slots as a JSON API.
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
	r.Get("/featured", h.resolve)
}

// MountAdmin attaches the admin save route.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Put("/featured", h.save)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.Resolve(r.Context())
	if err != nil {
		h.logger.Error("resolve featured", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, slots)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Slots []string `json:"slots"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Save(r.Context(), body.Slots)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
