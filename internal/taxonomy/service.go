// Package taxonomy keeps the flavor catalog in sync with what products
// actually reference. The flavor list is derived, not authoritative: it is
// recomputed from the product catalog after every mutating operation.
package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// ConfirmFunc is the confirmation port for destructive operations. The HTTP
// layer satisfies it from the request body so the service itself never
// blocks on operator input.
type ConfirmFunc func() bool

// Service derives and mutates the flavor taxonomy.
type Service struct {
	repo   catalog.Repository
	legacy []string
	coll   *collate.Collator
	logger *slog.Logger
}

// NewService wires the synchronizer. legacyFlavors is the free-standing
// flavor list from installs that predate the per-product flavor model; its
// entries survive every recompute.
func NewService(repo catalog.Repository, legacyFlavors []string, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		legacy: legacyFlavors,
		coll:   collate.New(language.Und),
		logger: logger,
	}
}

// Recompute overwrites the stored flavor catalog with the sorted, unique set
// of names referenced by any product, unioned with the legacy standalone
// list. A flavor added by hand and attached to nothing is dropped here
// unless the legacy list carries it.
// TODO: decide whether operator-added flavors with no product should be
// persisted across recomputes; today they silently disappear.
func (s *Service) Recompute(ctx context.Context) error {
	return s.recomputeExcluding(ctx, "")
}

func (s *Service) recomputeExcluding(ctx context.Context, excluded string) error {
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	for _, p := range products {
		if len(p.Flavors) > 0 {
			for _, f := range p.Flavors {
				if f.Name != "" {
					set[f.Name] = true
				}
			}
			continue
		}
		if p.Flavor != "" {
			set[p.Flavor] = true
		}
	}
	for _, name := range s.legacy {
		if name != "" {
			set[name] = true
		}
	}
	if excluded != "" {
		delete(set, excluded)
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	s.coll.SortStrings(names)
	return s.repo.SaveFlavors(ctx, names)
}

// List returns the current flavor catalog.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.repo.LoadLegacyFlavors(ctx)
}

// Add appends a standalone flavor name to the catalog. It is not attached to
// any product, so the next recompute may drop it again (see Recompute).
func (s *Service) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: flavor name is required", httpx.ErrValidation)
	}
	flavors, err := s.repo.LoadLegacyFlavors(ctx)
	if err != nil {
		return err
	}
	for _, existing := range flavors {
		if existing == name {
			return fmt.Errorf("%w: flavor %q", httpx.ErrDuplicate, name)
		}
	}
	flavors = append(flavors, name)
	s.coll.SortStrings(flavors)
	return s.repo.SaveFlavors(ctx, flavors)
}

// Rename rewrites a flavor name on every product that references it,
// including the legacy single-flavor mirror, in one products write, then
// recomputes the catalog. No partial rename is ever persisted.
func (s *Service) Rename(ctx context.Context, oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return fmt.Errorf("%w: both old and new flavor names are required", httpx.ErrValidation)
	}
	if oldName == newName {
		return nil
	}
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return err
	}
	touched := 0
	for i := range products {
		changed := false
		for j := range products[i].Flavors {
			if products[i].Flavors[j].Name == oldName {
				products[i].Flavors[j].Name = newName
				changed = true
			}
		}
		if products[i].Flavor == oldName {
			products[i].Flavor = newName
			changed = true
		}
		if changed {
			products[i].SyncLegacyFlavor()
			touched++
		}
	}
	if touched > 0 {
		if err := s.repo.SaveProducts(ctx, products); err != nil {
			return err
		}
	}
	s.logger.Info("flavor renamed", "from", oldName, "to", newName, "products", touched)
	return s.Recompute(ctx)
}

// Delete removes a flavor from the catalog and, when confirmed, from every
// product referencing it. Products keep a consistent legacy mirror: it is
// reassigned to the new first flavor, or cleared when none remain.
func (s *Service) Delete(ctx context.Context, name string, confirm ConfirmFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: flavor name is required", httpx.ErrValidation)
	}
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return err
	}
	refs := 0
	for _, p := range products {
		for _, f := range p.Flavors {
			if f.Name == name {
				refs++
				break
			}
		}
	}
	if refs > 0 {
		if confirm == nil || !confirm() {
			return fmt.Errorf("%w: flavor %q is used by %d product(s)", httpx.ErrConfirmationRequired, name, refs)
		}
		for i := range products {
			kept := products[i].Flavors[:0]
			for _, f := range products[i].Flavors {
				if f.Name != name {
					kept = append(kept, f)
				}
			}
			products[i].Flavors = kept
			if products[i].Flavor == name {
				if len(kept) > 0 {
					products[i].Flavor = kept[0].Name
				} else {
					products[i].Flavor = ""
				}
			}
			products[i].SyncLegacyFlavor()
		}
		if err := s.repo.SaveProducts(ctx, products); err != nil {
			return err
		}
	}
	s.logger.Info("flavor deleted", "name", name, "products", refs)
	// The name leaves the standalone catalog regardless of product usage.
	return s.recomputeExcluding(ctx, name)
}
