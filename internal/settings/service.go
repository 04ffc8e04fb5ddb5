// Package settings manages store identity records: the store name, the
// homepage slider slots, and the manual clear-all flow.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
	"github.com/vireo-shop/vireo/internal/platform/kv"
)

// SliderSlots is the fixed number of slider image positions.
const SliderSlots = 5

// ConfirmFunc is the confirmation port for the destructive clear-all
// operation.
type ConfirmFunc func() bool

// Defaults carries the embedded baseline values settings fall back to.
type Defaults struct {
	StoreName    string
	SliderImages []string
}

// Service reads and mutates store settings.
type Service struct {
	store    kv.Store
	repo     catalog.Repository
	defaults Defaults
	logger   *slog.Logger
}

// NewService wires the settings service.
func NewService(store kv.Store, repo catalog.Repository, defaults Defaults, logger *slog.Logger) *Service {
	return &Service{store: store, repo: repo, defaults: defaults, logger: logger}
}

// StoreName returns the configured store name, falling back to the baseline.
func (s *Service) StoreName(ctx context.Context) (string, error) {
	var name string
	if err := kv.GetJSON(ctx, s.store, kv.KeyStoreName, &name); err != nil {
		return "", fmt.Errorf("settings: load store name: %w", err)
	}
	if name == "" {
		return s.defaults.StoreName, nil
	}
	return name, nil
}

// SetStoreName overwrites the store name.
func (s *Service) SetStoreName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: store name is required", httpx.ErrValidation)
	}
	if err := kv.SetJSON(ctx, s.store, kv.KeyStoreName, name); err != nil {
		return fmt.Errorf("settings: save store name: %w", err)
	}
	return nil
}

// SliderImages returns the merged slider slots: for each index a non-empty
// locally stored value wins over a non-empty baseline value.
func (s *Service) SliderImages(ctx context.Context) ([]string, error) {
	var local []string
	if err := kv.GetJSON(ctx, s.store, kv.KeySliderImages, &local); err != nil {
		return nil, fmt.Errorf("settings: load slider: %w", err)
	}
	merged := make([]string, SliderSlots)
	for i := 0; i < SliderSlots; i++ {
		if i < len(local) && local[i] != "" {
			merged[i] = local[i]
			continue
		}
		if i < len(s.defaults.SliderImages) {
			merged[i] = s.defaults.SliderImages[i]
		}
	}
	return merged, nil
}

// SaveSliderImages overwrites the slider slots, padded or truncated to the
// fixed slot count.
func (s *Service) SaveSliderImages(ctx context.Context, images []string) ([]string, error) {
	slots := make([]string, SliderSlots)
	for i := 0; i < SliderSlots && i < len(images); i++ {
		slots[i] = images[i]
	}
	if err := kv.SetJSON(ctx, s.store, kv.KeySliderImages, slots); err != nil {
		return nil, fmt.Errorf("settings: save slider: %w", err)
	}
	return slots, nil
}

// ClearAll wipes every persisted record and raises the manually-cleared flag
// so no automatic repopulation happens until an explicit reseed. The
// confirmation port must return true or nothing is touched.
func (s *Service) ClearAll(ctx context.Context, confirm ConfirmFunc) error {
	if confirm == nil || !confirm() {
		return fmt.Errorf("%w: clearing all data is irreversible", httpx.ErrConfirmationRequired)
	}
	keys := []string{
		kv.KeyStoreName,
		kv.KeyProducts,
		kv.KeyBrands,
		kv.KeyFlavors,
		kv.KeySliderImages,
		kv.KeyFeaturedProducts,
		kv.KeyCart,
		kv.KeyBrandSubBrands,
		kv.KeyDataVersion,
	}
	for _, key := range keys {
		if err := s.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("settings: clear %s: %w", key, err)
		}
	}
	if err := s.repo.SetManuallyCleared(ctx, true); err != nil {
		return err
	}
	s.logger.Warn("all store data cleared by operator")
	return nil
}
