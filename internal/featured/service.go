// Package featured maps the four homepage promotional slots to live product
// records, tolerating stale and hand-edited references.
package featured

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/kv"
)

// SlotCount is the fixed number of featured slots.
const SlotCount = 4

// Slot is one resolved featured position. Product is nil for empty slots and
// for references that no longer resolve.
type Slot struct {
	ID      string           `json:"id"`
	Product *catalog.Product `json:"product,omitempty"`
}

// SaveResult reports how many of the saved non-empty slots resolved.
type SaveResult struct {
	Slots    []string `json:"slots"`
	Resolved int      `json:"resolved"`
	Missing  int      `json:"missing"`
}

// Service resolves and persists the featured slots.
type Service struct {
	store  kv.Store
	repo   catalog.Repository
	logger *slog.Logger
}

// NewService wires the resolver.
func NewService(store kv.Store, repo catalog.Repository, logger *slog.Logger) *Service {
	return &Service{store: store, repo: repo, logger: logger}
}

func (s *Service) slots(ctx context.Context) ([]string, error) {
	var raw []string
	if err := kv.GetJSON(ctx, s.store, kv.KeyFeaturedProducts, &raw); err != nil {
		return nil, fmt.Errorf("featured: load slots: %w", err)
	}
	return padSlots(raw), nil
}

// Resolve returns exactly SlotCount entries. A slot whose ID no longer maps
// to a product renders as empty rather than erroring.
func (s *Service) Resolve(ctx context.Context) ([]Slot, error) {
	ids, err := s.slots(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Slot, SlotCount)
	for i, id := range ids {
		out[i] = Slot{ID: id}
		if id == "" {
			continue
		}
		if p := matchProduct(products, id); p != nil {
			out[i].Product = p
		}
	}
	return out, nil
}

// Save writes exactly SlotCount entries, padding with empty markers. The same
// product may occupy multiple slots; the result reports how many non-empty
// slots failed to resolve so the caller can surface it.
func (s *Service) Save(ctx context.Context, ids []string) (SaveResult, error) {
	slots := padSlots(ids)
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	result := SaveResult{Slots: slots}
	for _, id := range slots {
		if id == "" {
			continue
		}
		if matchProduct(products, id) != nil {
			result.Resolved++
		} else {
			result.Missing++
		}
	}
	if err := kv.SetJSON(ctx, s.store, kv.KeyFeaturedProducts, slots); err != nil {
		return SaveResult{}, fmt.Errorf("featured: save slots: %w", err)
	}
	s.logger.Info("featured slots saved", "resolved", result.Resolved, "missing", result.Missing)
	return result, nil
}

// matchProduct applies string-normalized ID equality with a trimmed-string
// fallback for incidental whitespace in hand-edited slot values.
func matchProduct(products []catalog.Product, id string) *catalog.Product {
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	trimmed := strings.TrimSpace(id)
	for i := range products {
		if strings.TrimSpace(products[i].ID) == trimmed {
			return &products[i]
		}
	}
	return nil
}

func padSlots(ids []string) []string {
	slots := make([]string, SlotCount)
	for i := 0; i < SlotCount && i < len(ids); i++ {
		slots[i] = strings.TrimSpace(ids[i])
	}
	return slots
}
