package catalog

import (
	"context"
	"fmt"

	"github.com/vireo-shop/vireo/internal/platform/kv"
)

// Repository persists the catalog collections over the record store. Every
// write is a full-collection overwrite.
type Repository interface {
	LoadProducts(ctx context.Context) ([]Product, error)
	LoadProductRecords(ctx context.Context) ([]ProductRecord, error)
	SaveProducts(ctx context.Context, products []Product) error
	LoadBrands(ctx context.Context) ([]Brand, error)
	SaveBrands(ctx context.Context, brands []Brand) error
	LoadSubBrands(ctx context.Context) (map[string][]string, error)
	SaveSubBrands(ctx context.Context, subBrands map[string][]string) error
	LoadLegacyFlavors(ctx context.Context) ([]string, error)
	SaveFlavors(ctx context.Context, flavors []string) error
	DataVersion(ctx context.Context) (string, error)
	SetDataVersion(ctx context.Context, version string) error
	ManuallyCleared(ctx context.Context) (bool, error)
	SetManuallyCleared(ctx context.Context, cleared bool) error
}

type repository struct {
	store kv.Store
}

// NewRepository builds a record-store backed repository.
func NewRepository(store kv.Store) Repository {
	return &repository{store: store}
}

func (r *repository) LoadProducts(ctx context.Context) ([]Product, error) {
	records, err := r.LoadProductRecords(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.Normalize())
	}
	return products, nil
}

func (r *repository) LoadProductRecords(ctx context.Context) ([]ProductRecord, error) {
	var records []ProductRecord
	if err := kv.GetJSON(ctx, r.store, kv.KeyProducts, &records); err != nil {
		return nil, fmt.Errorf("catalog: load products: %w", err)
	}
	return records, nil
}

func (r *repository) SaveProducts(ctx context.Context, products []Product) error {
	records := make([]ProductRecord, 0, len(products))
	for i := range products {
		products[i].SyncLegacyFlavor()
		records = append(records, products[i].Record())
	}
	if err := kv.SetJSON(ctx, r.store, kv.KeyProducts, records); err != nil {
		return fmt.Errorf("catalog: save products: %w", err)
	}
	return nil
}

func (r *repository) LoadBrands(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	if err := kv.GetJSON(ctx, r.store, kv.KeyBrands, &brands); err != nil {
		return nil, fmt.Errorf("catalog: load brands: %w", err)
	}
	return brands, nil
}

func (r *repository) SaveBrands(ctx context.Context, brands []Brand) error {
	if err := kv.SetJSON(ctx, r.store, kv.KeyBrands, brands); err != nil {
		return fmt.Errorf("catalog: save brands: %w", err)
	}
	return nil
}

func (r *repository) LoadSubBrands(ctx context.Context) (map[string][]string, error) {
	subBrands := map[string][]string{}
	if err := kv.GetJSON(ctx, r.store, kv.KeyBrandSubBrands, &subBrands); err != nil {
		return nil, fmt.Errorf("catalog: load sub-brands: %w", err)
	}
	return subBrands, nil
}

func (r *repository) SaveSubBrands(ctx context.Context, subBrands map[string][]string) error {
	if err := kv.SetJSON(ctx, r.store, kv.KeyBrandSubBrands, subBrands); err != nil {
		return fmt.Errorf("catalog: save sub-brands: %w", err)
	}
	return nil
}

func (r *repository) LoadLegacyFlavors(ctx context.Context) ([]string, error) {
	var flavors []string
	if err := kv.GetJSON(ctx, r.store, kv.KeyFlavors, &flavors); err != nil {
		return nil, fmt.Errorf("catalog: load flavors: %w", err)
	}
	return flavors, nil
}

func (r *repository) SaveFlavors(ctx context.Context, flavors []string) error {
	if err := kv.SetJSON(ctx, r.store, kv.KeyFlavors, flavors); err != nil {
		return fmt.Errorf("catalog: save flavors: %w", err)
	}
	return nil
}

func (r *repository) DataVersion(ctx context.Context) (string, error) {
	var version string
	if err := kv.GetJSON(ctx, r.store, kv.KeyDataVersion, &version); err != nil {
		return "", fmt.Errorf("catalog: load data version: %w", err)
	}
	return version, nil
}

func (r *repository) SetDataVersion(ctx context.Context, version string) error {
	if err := kv.SetJSON(ctx, r.store, kv.KeyDataVersion, version); err != nil {
		return fmt.Errorf("catalog: save data version: %w", err)
	}
	return nil
}

func (r *repository) ManuallyCleared(ctx context.Context) (bool, error) {
	var flag string
	if err := kv.GetJSON(ctx, r.store, kv.KeyManuallyCleared, &flag); err != nil {
		return false, fmt.Errorf("catalog: load cleared flag: %w", err)
	}
	return flag == "true", nil
}

func (r *repository) SetManuallyCleared(ctx context.Context, cleared bool) error {
	if !cleared {
		if err := r.store.Remove(ctx, kv.KeyManuallyCleared); err != nil {
			return fmt.Errorf("catalog: clear flag: %w", err)
		}
		return nil
	}
	if err := kv.SetJSON(ctx, r.store, kv.KeyManuallyCleared, "true"); err != nil {
		return fmt.Errorf("catalog: set cleared flag: %w", err)
	}
	return nil
}
