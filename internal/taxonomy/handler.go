package taxonomy

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// Handler exposes the flavor taxonomy as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler wires the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountPublic attaches the storefront read routes.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/flavors", h.list)
}

// MountAdmin attaches the admin mutation routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Post("/flavors", h.add)
	r.Post("/flavors/rename", h.rename)
	r.Delete("/flavors/{name}", h.delete)
	r.Post("/flavors/recompute", h.recompute)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	flavors, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if flavors == nil {
		flavors = []string{}
	}
	httpx.JSON(w, http.StatusOK, flavors)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Add(r.Context(), body.Name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Rename(r.Context(), body.From, body.To); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// delete satisfies the confirmation port from the request body: deleting a
// flavor still referenced by products requires {"confirm": true}.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	// The body is optional for unreferenced flavors.
	_ = httpx.DecodeJSON(r, &body)
	err := h.service.Delete(r.Context(), chi.URLParam(r, "name"), func() bool { return body.Confirm })
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Recompute(r.Context()); err != nil {
		h.logger.Error("recompute flavors", "error", err)
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
