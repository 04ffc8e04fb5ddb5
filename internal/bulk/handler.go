package bulk

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// maxImportSize caps uploaded import files.
const maxImportSize = 32 << 20

// Handler exposes import/export as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	repo    catalog.Repository
	session *Session

	// bundleGroup collapses concurrent bundle builds into one store read.
	bundleGroup singleflight.Group
}

// NewHandler wires the handler. The session serialises the import flow.
func NewHandler(logger *slog.Logger, service *Service, repo catalog.Repository) *Handler {
	return &Handler{logger: logger, service: service, repo: repo, session: NewSession()}
}

// MountAdmin attaches the admin routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Get("/export/products.json", h.exportJSON)
	r.Get("/export/products.csv", h.exportCSV)
	r.Get("/export/products.xlsx", h.exportXLSX)
	r.Get("/export/bundle", h.exportBundle)
	r.Post("/import", h.importFile)
	r.Post("/import/apply", h.apply)
	r.Post("/import/cancel", h.cancel)
	r.Post("/import/bundle", h.importBundle)
}

func (h *Handler) exportJSON(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.LoadProducts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Attachment(w, "products.json", "application/json")
	if err := WriteJSON(w, products); err != nil {
		h.logger.Error("export json", "error", err)
	}
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.LoadProducts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Attachment(w, "products.csv", "text/csv")
	if err := WriteCSV(w, products); err != nil {
		h.logger.Error("export csv", "error", err)
	}
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.LoadProducts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Attachment(w, "products.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := WriteXLSX(w, products); err != nil {
		h.logger.Error("export xlsx", "error", err)
	}
}

func (h *Handler) exportBundle(w http.ResponseWriter, r *http.Request) {
	v, err, _ := h.bundleGroup.Do("bundle", func() (any, error) {
		return h.service.BuildBundle(r.Context())
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	bundle := v.(Bundle)
	httpx.Attachment(w, "store-bundle.json", "application/json")
	if err := WriteBundle(w, bundle); err != nil {
		h.logger.Error("export bundle", "error", err)
	}
}

// importFile receives the upload and parses it, leaving the session in the
// Parsed state awaiting a merge-or-replace decision.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Upload", "multipart form expected")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Upload", "a file field is required")
		return
	}
	defer file.Close()

	if err := h.session.Select(header.Filename); err != nil {
		httpx.RespondError(w, err)
		return
	}
	count, err := h.session.Parse(file)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"state":    h.session.State(),
		"filename": header.Filename,
		"parsed":   count,
	})
}

// apply resolves the parsed set with the chosen mode. Replace is destructive
// and demands an explicit confirmation beyond the mode choice itself.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode    string `json:"mode"`
		Confirm bool   `json:"confirm"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	switch body.Mode {
	case "merge":
		products, err := h.session.Take()
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		result, err := h.service.Merge(r.Context(), products)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, result)
	case "replace":
		if !body.Confirm {
			httpx.RespondError(w, fmt.Errorf("%w: replace discards the existing catalog", httpx.ErrConfirmationRequired))
			return
		}
		products, err := h.session.Take()
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		count, err := h.service.Replace(r.Context(), products, func() bool { return body.Confirm })
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]int{"replaced": count})
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "mode must be merge or replace")
	}
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.session.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) importBundle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Upload", "multipart form expected")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Upload", "a file field is required")
		return
	}
	defer file.Close()

	bundle, err := ParseBundle(file)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	confirm := r.FormValue("confirm") == "true"
	if err := h.service.RestoreBundle(r.Context(), bundle, func() bool { return confirm }); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
