package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// InstallState classifies what the reconciler found on load.
type InstallState string

const (
	// StateCleared means the operator wiped all data; repopulation is blocked
	// until an explicit reseed clears the flag.
	StateCleared InstallState = "cleared"
	// StateFresh means no products existed and the baseline was adopted.
	StateFresh InstallState = "fresh"
	// StateCurrent means local data matched the baseline version; nothing ran.
	StateCurrent InstallState = "current"
	// StateMerged means baseline data was merged into existing local edits.
	StateMerged InstallState = "merged"
)

// BaselineData is the embedded factory data the reconciler consumes. It is
// injected rather than read directly so the merge logic stays testable.
type BaselineData struct {
	Version  string
	Products []ProductRecord
	Brands   []string
	Flavors  []string
	// ImageFor resolves a conventional image path to an embedded base64 data
	// URI; the boolean is false when no embedded image matches.
	ImageFor func(path string) (string, bool)
}

func (b BaselineData) resolveImage(path string) string {
	if path == "" || b.ImageFor == nil {
		return path
	}
	if uri, ok := b.ImageFor(path); ok {
		return uri
	}
	return path
}

// Outcome summarises a reconciliation pass.
type Outcome struct {
	State     InstallState `json:"state"`
	Adopted   int          `json:"adopted"`
	Merged    int          `json:"merged"`
	Preserved int          `json:"preserved"`
}

// Reconciler decides, on every startup, whether to populate the store from
// the embedded baseline, leave it alone, or merge baseline records into the
// operator's local edits field by field.
type Reconciler struct {
	repo     Repository
	baseline BaselineData
	logger   *slog.Logger
}

// NewReconciler wires the reconciler.
func NewReconciler(repo Repository, baseline BaselineData, logger *slog.Logger) *Reconciler {
	return &Reconciler{repo: repo, baseline: baseline, logger: logger}
}

// Run executes one reconciliation pass. force skips the version check and
// always merges when local products exist.
func (r *Reconciler) Run(ctx context.Context, force bool) (Outcome, error) {
	cleared, err := r.repo.ManuallyCleared(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if cleared {
		r.logger.Info("reconcile skipped, data manually cleared")
		return Outcome{State: StateCleared}, nil
	}

	local, err := r.repo.LoadProductRecords(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if len(local) == 0 {
		return r.freshInstall(ctx)
	}

	version, err := r.repo.DataVersion(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if version == r.baseline.Version && !force {
		return Outcome{State: StateCurrent}, nil
	}
	return r.mergeInstall(ctx, local)
}

// freshInstall adopts the baseline verbatim and derives the initial brand
// list from the adopted products. This is the only path that ever
// auto-populates brands: there is no pre-existing manual list to protect.
func (r *Reconciler) freshInstall(ctx context.Context) (Outcome, error) {
	products := make([]Product, 0, len(r.baseline.Products))
	for _, rec := range r.baseline.Products {
		products = append(products, r.adopt(rec))
	}
	if err := r.repo.SaveProducts(ctx, products); err != nil {
		return Outcome{}, err
	}

	seen := map[string]bool{}
	brands := []Brand{}
	for _, p := range products {
		if p.Brand == "" || seen[p.Brand] {
			continue
		}
		seen[p.Brand] = true
		brands = append(brands, Brand{Name: p.Brand, DisplayOrder: len(brands)})
	}
	if err := r.repo.SaveBrands(ctx, brands); err != nil {
		return Outcome{}, err
	}
	if err := r.repo.SetDataVersion(ctx, r.baseline.Version); err != nil {
		return Outcome{}, err
	}
	r.logger.Info("fresh install seeded", "products", len(products), "brands", len(brands))
	return Outcome{State: StateFresh, Adopted: len(products)}, nil
}

// adopt normalizes a baseline record, routing every image reference through
// the embedded lookup with a path fallback.
func (r *Reconciler) adopt(rec ProductRecord) Product {
	p := rec.Normalize()
	p.Image = r.baseline.resolveImage(p.Image)
	for i := range p.Flavors {
		p.Flavors[i].Image = r.baseline.resolveImage(p.Flavors[i].Image)
	}
	for i := range p.AdditionalImages {
		p.AdditionalImages[i] = r.baseline.resolveImage(p.AdditionalImages[i])
	}
	return p
}

// mergeInstall folds the baseline into existing local products without
// clobbering the operator's edits. Brands are deliberately not touched here.
func (r *Reconciler) mergeInstall(ctx context.Context, local []ProductRecord) (Outcome, error) {
	matched := make([]bool, len(local))
	merged := make([]Product, 0, len(local)+len(r.baseline.Products))
	outcome := Outcome{State: StateMerged}

	for _, base := range r.baseline.Products {
		idx := findRecord(local, string(base.ID))
		if idx < 0 {
			merged = append(merged, r.adopt(base))
			outcome.Adopted++
			continue
		}
		matched[idx] = true
		merged = append(merged, r.mergeRecord(base, local[idx]))
		outcome.Merged++
	}

	// Local products with no baseline counterpart are preserved unchanged.
	for i, rec := range local {
		if matched[i] {
			continue
		}
		merged = append(merged, rec.Normalize())
		outcome.Preserved++
	}

	if err := r.repo.SaveProducts(ctx, merged); err != nil {
		return Outcome{}, err
	}
	if err := r.repo.SetDataVersion(ctx, r.baseline.Version); err != nil {
		return Outcome{}, err
	}
	r.logger.Info("baseline merged",
		"adopted", outcome.Adopted, "merged", outcome.Merged, "preserved", outcome.Preserved)
	return outcome, nil
}

// mergeRecord applies the per-field precedence: price/stock/description/status
// keep the local value when defined (explicit zero counts as defined), the
// image prefers a resolvable embedded base64 over a locally stored path, and
// flavors merge per-name with local fields winning.
func (r *Reconciler) mergeRecord(base, local ProductRecord) Product {
	out := base
	out.ID = local.ID

	if local.Price != nil {
		out.Price = local.Price
	}
	if local.Stock != nil {
		out.Stock = local.Stock
	}
	if local.Description != nil {
		out.Description = local.Description
	}
	if local.Status != nil {
		out.Status = local.Status
	}
	if local.Name != "" {
		out.Name = local.Name
	}
	if local.Brand != "" {
		out.Brand = local.Brand
	}

	// Locally stored image paths may not be portable across machines, so a
	// resolvable embedded image beats the local value.
	basePath := ""
	if base.Image != nil {
		basePath = *base.Image
	}
	if uri, ok := r.embeddedImage(basePath); ok {
		out.Image = &uri
	} else if local.Image != nil && *local.Image != "" {
		out.Image = local.Image
	}

	// A local record still in the legacy single-flavor shape folds into a
	// one-entry list first, so its flavor survives the merge like any other
	// local-only entry.
	localFlavors := local.Flavors
	if len(localFlavors) == 0 && strings.TrimSpace(local.Flavor) != "" {
		legacy := Flavor{Name: strings.TrimSpace(local.Flavor)}
		if local.Image != nil {
			legacy.Image = *local.Image
		}
		localFlavors = []Flavor{legacy}
	}
	out.Flavors = mergeFlavors(base.Flavors, localFlavors)
	if len(local.AdditionalImages) > 0 {
		out.AdditionalImages = local.AdditionalImages
	}
	if len(local.Specs) > 0 {
		out.Specs = local.Specs
	}
	return out.Normalize()
}

func (r *Reconciler) embeddedImage(path string) (string, bool) {
	if path == "" || r.baseline.ImageFor == nil {
		return "", false
	}
	return r.baseline.ImageFor(path)
}

// mergeFlavors keeps the baseline flavor order, overlays local per-field
// edits by flavor name, and appends flavors only the local copy knows about.
func mergeFlavors(base, local []Flavor) []Flavor {
	if len(base) == 0 {
		return local
	}
	out := make([]Flavor, 0, len(base))
	used := make([]bool, len(local))
	for _, bf := range base {
		mergedFlavor := bf
		for i, lf := range local {
			if used[i] || lf.Name != bf.Name {
				continue
			}
			used[i] = true
			if lf.Image != "" {
				mergedFlavor.Image = lf.Image
			}
			break
		}
		out = append(out, mergedFlavor)
	}
	for i, lf := range local {
		if !used[i] && lf.Name != "" {
			out = append(out, lf)
		}
	}
	return out
}

func findRecord(records []ProductRecord, id string) int {
	for i := range records {
		if SameID(string(records[i].ID), id) {
			return i
		}
	}
	return -1
}

// Reseed clears the manually-cleared flag and immediately re-runs a pass.
func (r *Reconciler) Reseed(ctx context.Context) (Outcome, error) {
	if err := r.repo.SetManuallyCleared(ctx, false); err != nil {
		return Outcome{}, err
	}
	outcome, err := r.Run(ctx, true)
	if err != nil {
		return Outcome{}, fmt.Errorf("catalog: reseed: %w", err)
	}
	return outcome, nil
}
