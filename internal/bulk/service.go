package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
	"github.com/vireo-shop/vireo/internal/platform/kv"
)

// BundleVersion tags bundles produced by this build.
const BundleVersion = "2"

// ConfirmFunc is the confirmation port for the destructive replace path.
type ConfirmFunc func() bool

// Recomputer re-derives the flavor catalog after the product list changes.
type Recomputer interface {
	Recompute(ctx context.Context) error
}

// MergeResult reports the outcome of a merge import.
type MergeResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Service applies imported product sets and assembles exports. No import
// path ever mutates the brand list; that invariant is enforced here by
// simply never writing it.
type Service struct {
	store     kv.Store
	repo      catalog.Repository
	recompute Recomputer
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService wires the translator.
func NewService(store kv.Store, repo catalog.Repository, recompute Recomputer, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		repo:      repo,
		recompute: recompute,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Merge appends imported products whose ID is not already present and whose
// (name, brand) pair does not already exist, reporting added and skipped
// counts.
func (s *Service) Merge(ctx context.Context, imported []catalog.Product) (MergeResult, error) {
	existing, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return MergeResult{}, err
	}
	ids := map[string]bool{}
	pairs := map[string]bool{}
	for _, p := range existing {
		ids[strings.TrimSpace(p.ID)] = true
		pairs[pairKey(p)] = true
	}

	result := MergeResult{}
	for _, p := range imported {
		if ids[strings.TrimSpace(p.ID)] || pairs[pairKey(p)] {
			result.Skipped++
			continue
		}
		ids[strings.TrimSpace(p.ID)] = true
		pairs[pairKey(p)] = true
		existing = append(existing, p)
		result.Added++
	}
	if result.Added > 0 {
		if err := s.repo.SaveProducts(ctx, existing); err != nil {
			return MergeResult{}, err
		}
		if err := s.recompute.Recompute(ctx); err != nil {
			return MergeResult{}, err
		}
	}
	s.logger.Info("import merged", "added", result.Added, "skipped", result.Skipped)
	return result, nil
}

// Replace discards the entire previous product list and adopts the imported
// set. Destructive and irreversible, so the confirmation port must agree.
func (s *Service) Replace(ctx context.Context, imported []catalog.Product, confirm ConfirmFunc) (int, error) {
	if confirm == nil || !confirm() {
		return 0, fmt.Errorf("%w: replacing the catalog discards all existing products", httpx.ErrConfirmationRequired)
	}
	if err := s.repo.SaveProducts(ctx, imported); err != nil {
		return 0, err
	}
	if err := s.recompute.Recompute(ctx); err != nil {
		return 0, err
	}
	s.logger.Warn("catalog replaced by import", "products", len(imported))
	return len(imported), nil
}

func pairKey(p catalog.Product) string {
	return strings.ToLower(strings.TrimSpace(p.Name)) + "\x00" + strings.ToLower(strings.TrimSpace(p.Brand))
}

// BuildBundle assembles the full-store export envelope.
func (s *Service) BuildBundle(ctx context.Context) (Bundle, error) {
	records, err := s.repo.LoadProductRecords(ctx)
	if err != nil {
		return Bundle{}, err
	}
	brands, err := s.repo.LoadBrands(ctx)
	if err != nil {
		return Bundle{}, err
	}
	flavors, err := s.repo.LoadLegacyFlavors(ctx)
	if err != nil {
		return Bundle{}, err
	}
	bundle := Bundle{
		Version:    BundleVersion,
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Products:   records,
		Brands:     brands,
		Flavors:    flavors,
	}
	if err := kv.GetJSON(ctx, s.store, kv.KeyStoreName, &bundle.StoreName); err != nil {
		return Bundle{}, err
	}
	if err := kv.GetJSON(ctx, s.store, kv.KeySliderImages, &bundle.SliderImages); err != nil {
		return Bundle{}, err
	}
	if err := kv.GetJSON(ctx, s.store, kv.KeyFeaturedProducts, &bundle.FeaturedProducts); err != nil {
		return Bundle{}, err
	}
	return bundle, nil
}

// RestoreBundle validates and applies a full-store bundle. Products, store
// name, slider, featured and flavor records are restored; the brand list is
// restored verbatim from the bundle since a bundle is a backup, not a
// catalog import.
func (s *Service) RestoreBundle(ctx context.Context, bundle Bundle, confirm ConfirmFunc) error {
	if err := s.validate.Struct(bundle); err != nil {
		return fmt.Errorf("%w: bundle is missing its version tag", httpx.ErrValidation)
	}
	if confirm == nil || !confirm() {
		return fmt.Errorf("%w: restoring a bundle overwrites the whole store", httpx.ErrConfirmationRequired)
	}
	products := make([]catalog.Product, 0, len(bundle.Products))
	for _, rec := range bundle.Products {
		p := rec.Normalize()
		if p.Name == "" {
			continue
		}
		if p.ID == "" {
			p.ID = catalog.NewProductID()
		}
		products = append(products, p)
	}
	if err := s.repo.SaveProducts(ctx, products); err != nil {
		return err
	}
	if err := s.repo.SaveBrands(ctx, bundle.Brands); err != nil {
		return err
	}
	if err := s.repo.SaveFlavors(ctx, bundle.Flavors); err != nil {
		return err
	}
	if bundle.StoreName != "" {
		if err := kv.SetJSON(ctx, s.store, kv.KeyStoreName, bundle.StoreName); err != nil {
			return err
		}
	}
	if err := kv.SetJSON(ctx, s.store, kv.KeySliderImages, bundle.SliderImages); err != nil {
		return err
	}
	if err := kv.SetJSON(ctx, s.store, kv.KeyFeaturedProducts, bundle.FeaturedProducts); err != nil {
		return err
	}
	if err := s.recompute.Recompute(ctx); err != nil {
		return err
	}
	s.logger.Warn("store restored from bundle", "products", len(products), "date", bundle.ExportDate)
	return nil
}
