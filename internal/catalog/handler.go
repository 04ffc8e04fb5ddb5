package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// Handler exposes catalog reads and admin mutations as a JSON API.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	reconciler *Reconciler
	recompute  Recomputer
}

// NewHandler wires the handler. The recomputer re-derives the flavor catalog
// after the reconcile endpoints rewrite the product list.
func NewHandler(logger *slog.Logger, service *Service, reconciler *Reconciler, recompute Recomputer) *Handler {
	return &Handler{logger: logger, service: service, reconciler: reconciler, recompute: recompute}
}

// MountPublic attaches the storefront read routes.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Get("/brands", h.listBrands)
	r.Get("/brands/sub", h.subBrands)
}

// MountAdmin attaches the admin mutation routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
	r.Post("/brands", h.addBrand)
	r.Delete("/brands/{name}", h.deleteBrand)
	r.Put("/brands/order", h.reorderBrands)
	r.Post("/brands/{name}/sub", h.addSubBrand)
	r.Delete("/brands/{name}/sub/{sub}", h.deleteSubBrand)
	r.Post("/reconcile", h.reconcile)
	r.Post("/reseed", h.reseed)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Brand:  r.URL.Query().Get("brand"),
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}
	products, err := h.service.ListProducts(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.CreateProduct(r.Context(), p)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.service.ListBrands(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if brands == nil {
		brands = []Brand{}
	}
	httpx.JSON(w, http.StatusOK, brands)
}

func (h *Handler) addBrand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	brand, err := h.service.AddBrand(r.Context(), body.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, brand)
}

func (h *Handler) deleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBrand(r.Context(), chi.URLParam(r, "name")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reorderBrands(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Order []string `json:"order"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	brands, err := h.service.ReorderBrands(r.Context(), body.Order)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, brands)
}

func (h *Handler) subBrands(w http.ResponseWriter, r *http.Request) {
	subBrands, err := h.service.SubBrands(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, subBrands)
}

func (h *Handler) addSubBrand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.AddSubBrand(r.Context(), chi.URLParam(r, "name"), body.Name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteSubBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSubBrand(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "sub")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.reconciler.Run(r.Context(), true)
	if err != nil {
		h.logger.Error("forced reconcile", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if err := h.recomputeAfter(r.Context(), outcome); err != nil {
		h.logger.Error("reconcile flavor recompute", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, outcome)
}

func (h *Handler) reseed(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.reconciler.Reseed(r.Context())
	if err != nil {
		h.logger.Error("reseed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if err := h.recomputeAfter(r.Context(), outcome); err != nil {
		h.logger.Error("reseed flavor recompute", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, outcome)
}

// recomputeAfter re-derives the flavor catalog once a reconcile pass has
// rewritten the product list. A cleared store stays empty.
func (h *Handler) recomputeAfter(ctx context.Context, outcome Outcome) error {
	if h.recompute == nil || outcome.State == StateCleared {
		return nil
	}
	return h.recompute.Recompute(ctx)
}
