package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// Recomputer re-derives the flavor catalog after product mutations. Satisfied
// by the taxonomy service; injected to keep the packages decoupled.
type Recomputer interface {
	Recompute(ctx context.Context) error
}

// ListFilters narrows product listings.
type ListFilters struct {
	Brand  string
	Search string
	Status string
}

// Service carries the administrative catalog operations.
type Service struct {
	repo      Repository
	recompute Recomputer
	logger    *slog.Logger
}

// NewService wires the catalog service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetRecomputer installs the taxonomy hook. Called once during wiring.
func (s *Service) SetRecomputer(r Recomputer) {
	s.recompute = r
}

func (s *Service) afterMutation(ctx context.Context) error {
	if s.recompute == nil {
		return nil
	}
	return s.recompute.Recompute(ctx)
}

// ListProducts returns the catalog, optionally filtered.
func (s *Service) ListProducts(ctx context.Context, filters ListFilters) ([]Product, error) {
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	if filters == (ListFilters{}) {
		return products, nil
	}
	search := strings.ToLower(filters.Search)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if filters.Brand != "" && p.Brand != filters.Brand {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetProduct resolves one product by its string-normalized ID.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if SameID(p.ID, id) {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: product %q", httpx.ErrNotFound, id)
}

// CreateProduct validates and appends a product. The brand list is never
// touched: adding a product with an unknown brand does not create the brand.
func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p, true); err != nil {
		return Product{}, err
	}
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		p.ID = NewProductID()
	} else {
		for _, existing := range products {
			if SameID(existing.ID, p.ID) {
				return Product{}, fmt.Errorf("%w: product id %q", httpx.ErrDuplicate, p.ID)
			}
		}
	}
	if p.Status == "" {
		p.Status = StatusAvailable
	}
	p.SyncLegacyFlavor()
	products = append(products, p)
	if err := s.repo.SaveProducts(ctx, products); err != nil {
		return Product{}, err
	}
	if err := s.afterMutation(ctx); err != nil {
		return Product{}, err
	}
	s.logger.Info("product created", "id", p.ID, "name", p.Name)
	return p, nil
}

// UpdateProduct replaces a product's editable fields. The ID is immutable.
func (s *Service) UpdateProduct(ctx context.Context, id string, p Product) (Product, error) {
	if err := validateProduct(p, false); err != nil {
		return Product{}, err
	}
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	for i := range products {
		if !SameID(products[i].ID, id) {
			continue
		}
		p.ID = products[i].ID
		p.SyncLegacyFlavor()
		products[i] = p
		if err := s.repo.SaveProducts(ctx, products); err != nil {
			return Product{}, err
		}
		if err := s.afterMutation(ctx); err != nil {
			return Product{}, err
		}
		s.logger.Info("product updated", "id", p.ID)
		return p, nil
	}
	return Product{}, fmt.Errorf("%w: product %q", httpx.ErrNotFound, id)
}

// DeleteProduct removes a product by ID.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return err
	}
	kept := products[:0]
	found := false
	for _, p := range products {
		if SameID(p.ID, id) {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("%w: product %q", httpx.ErrNotFound, id)
	}
	if err := s.repo.SaveProducts(ctx, kept); err != nil {
		return err
	}
	if err := s.afterMutation(ctx); err != nil {
		return err
	}
	s.logger.Info("product deleted", "id", id)
	return nil
}

// ListBrands returns brands sorted by display order, then name.
func (s *Service) ListBrands(ctx context.Context) ([]Brand, error) {
	brands, err := s.repo.LoadBrands(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(brands, func(i, j int) bool {
		if brands[i].DisplayOrder != brands[j].DisplayOrder {
			return brands[i].DisplayOrder < brands[j].DisplayOrder
		}
		return brands[i].Name < brands[j].Name
	})
	return brands, nil
}

// AddBrand appends a brand. This is the only way (besides a fresh install)
// that a brand enters the list.
func (s *Service) AddBrand(ctx context.Context, name string) (Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Brand{}, fmt.Errorf("%w: brand name is required", httpx.ErrValidation)
	}
	brands, err := s.repo.LoadBrands(ctx)
	if err != nil {
		return Brand{}, err
	}
	for _, b := range brands {
		if b.Name == name {
			return Brand{}, fmt.Errorf("%w: brand %q", httpx.ErrDuplicate, name)
		}
	}
	brand := Brand{Name: name, DisplayOrder: len(brands)}
	brands = append(brands, brand)
	if err := s.repo.SaveBrands(ctx, brands); err != nil {
		return Brand{}, err
	}
	s.logger.Info("brand added", "name", name)
	return brand, nil
}

// DeleteBrand removes a brand and its sub-brand entries. Products that still
// reference the brand are left untouched; a later reconcile will not
// resurrect the deletion.
func (s *Service) DeleteBrand(ctx context.Context, name string) error {
	brands, err := s.repo.LoadBrands(ctx)
	if err != nil {
		return err
	}
	kept := brands[:0]
	found := false
	for _, b := range brands {
		if b.Name == name {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	if !found {
		return fmt.Errorf("%w: brand %q", httpx.ErrNotFound, name)
	}
	for i := range kept {
		kept[i].DisplayOrder = i
	}
	if err := s.repo.SaveBrands(ctx, kept); err != nil {
		return err
	}

	subBrands, err := s.repo.LoadSubBrands(ctx)
	if err != nil {
		return err
	}
	if _, ok := subBrands[name]; ok {
		delete(subBrands, name)
		if err := s.repo.SaveSubBrands(ctx, subBrands); err != nil {
			return err
		}
	}
	s.logger.Info("brand deleted", "name", name)
	return nil
}

// ReorderBrands applies an explicit display order. Names absent from the
// request keep their relative order after the named ones.
func (s *Service) ReorderBrands(ctx context.Context, ordered []string) ([]Brand, error) {
	brands, err := s.repo.LoadBrands(ctx)
	if err != nil {
		return nil, err
	}
	rank := map[string]int{}
	for i, name := range ordered {
		rank[name] = i
	}
	sort.SliceStable(brands, func(i, j int) bool {
		ri, iOK := rank[brands[i].Name]
		rj, jOK := rank[brands[j].Name]
		switch {
		case iOK && jOK:
			return ri < rj
		case iOK:
			return true
		default:
			return false
		}
	})
	for i := range brands {
		brands[i].DisplayOrder = i
	}
	if err := s.repo.SaveBrands(ctx, brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// SubBrands returns the brand → sub-brand map.
func (s *Service) SubBrands(ctx context.Context) (map[string][]string, error) {
	return s.repo.LoadSubBrands(ctx)
}

// AddSubBrand attaches a sub-brand under an existing brand.
func (s *Service) AddSubBrand(ctx context.Context, brand, sub string) error {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return fmt.Errorf("%w: sub-brand name is required", httpx.ErrValidation)
	}
	brands, err := s.repo.LoadBrands(ctx)
	if err != nil {
		return err
	}
	known := false
	for _, b := range brands {
		if b.Name == brand {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: brand %q", httpx.ErrNotFound, brand)
	}
	subBrands, err := s.repo.LoadSubBrands(ctx)
	if err != nil {
		return err
	}
	for _, existing := range subBrands[brand] {
		if existing == sub {
			return fmt.Errorf("%w: sub-brand %q", httpx.ErrDuplicate, sub)
		}
	}
	subBrands[brand] = append(subBrands[brand], sub)
	return s.repo.SaveSubBrands(ctx, subBrands)
}

// DeleteSubBrand detaches a sub-brand.
func (s *Service) DeleteSubBrand(ctx context.Context, brand, sub string) error {
	subBrands, err := s.repo.LoadSubBrands(ctx)
	if err != nil {
		return err
	}
	entries, ok := subBrands[brand]
	if !ok {
		return fmt.Errorf("%w: brand %q", httpx.ErrNotFound, brand)
	}
	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e == sub {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("%w: sub-brand %q", httpx.ErrNotFound, sub)
	}
	if len(kept) == 0 {
		delete(subBrands, brand)
	} else {
		subBrands[brand] = kept
	}
	return s.repo.SaveSubBrands(ctx, subBrands)
}
