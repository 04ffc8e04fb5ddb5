package cart

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// Handler exposes cart operations as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler wires the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the cart routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/items", h.add)
	r.Patch("/items", h.adjust)
	r.Put("/items", h.setQuantity)
	r.Delete("/items", h.remove)
	r.Delete("/", h.clear)
}

type lineRequest struct {
	ProductID string `json:"productId"`
	Flavor    string `json:"flavor"`
	Quantity  int    `json:"quantity"`
	Delta     int    `json:"delta"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list cart", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var body lineRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.AddLine(r.Context(), body.ProductID, body.Quantity, body.Flavor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var body lineRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.AdjustQuantity(r.Context(), body.ProductID, body.Flavor, body.Delta)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var body lineRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.SetQuantity(r.Context(), body.ProductID, body.Flavor, body.Quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	var body lineRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.Remove(r.Context(), body.ProductID, body.Flavor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
