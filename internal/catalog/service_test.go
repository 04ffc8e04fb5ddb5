package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
	"github.com/vireo-shop/vireo/internal/platform/kv"
)

type recomputeSpy struct {
	calls int
}

func (r *recomputeSpy) Recompute(context.Context) error {
	r.calls++
	return nil
}

func newTestService(t *testing.T) (*Service, Repository, *recomputeSpy) {
	t.Helper()
	repo := NewRepository(kv.NewMemory())
	svc := NewService(repo, testLogger())
	spy := &recomputeSpy{}
	svc.SetRecomputer(spy)
	return svc, repo, spy
}

func sampleProduct(id, name string) Product {
	return Product{ID: id, Name: name, Brand: "Polar Labs", Price: 20, Stock: 5, Image: "img.png"}
}

func TestCreateProductGeneratesIDAndDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _, spy := newTestService(t)

	created, err := svc.CreateProduct(ctx, Product{Name: "Glacier Mint", Brand: "Polar Labs", Image: "x.png"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, StatusAvailable, created.Status)
	require.Equal(t, 1, spy.calls)
}

func TestCreateProductRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(ctx, sampleProduct("1001", "A"))
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, sampleProduct("1001", "B"))
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateProductRequiresImage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(ctx, Product{Name: "No Image", Brand: "B"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	// A flavor image satisfies the requirement when the primary is absent.
	_, err = svc.CreateProduct(ctx, Product{
		Name: "Flavor Image", Brand: "B",
		Flavors: []Flavor{{Name: "Mint", Image: "f.png"}},
	})
	require.NoError(t, err)
}

func TestCreateProductDoesNotCreateBrand(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	_, err := svc.CreateProduct(ctx, sampleProduct("", "Unbranded Flow"))
	require.NoError(t, err)

	brands, err := repo.LoadBrands(ctx)
	require.NoError(t, err)
	require.Empty(t, brands)
}

func TestUpdateProductKeepsID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(ctx, sampleProduct("1001", "A"))
	require.NoError(t, err)

	edit := sampleProduct("9999", "Renamed")
	updated, err := svc.UpdateProduct(ctx, "1001", edit)
	require.NoError(t, err)
	require.Equal(t, "1001", updated.ID)
	require.Equal(t, "Renamed", updated.Name)

	_, err = svc.GetProduct(ctx, "9999")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(ctx, sampleProduct("1001", "A"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, " 1001 "))
	require.ErrorIs(t, svc.DeleteProduct(ctx, "1001"), httpx.ErrNotFound)
}

func TestListProductsFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(ctx, sampleProduct("1", "Glacier Mint"))
	require.NoError(t, err)
	p := sampleProduct("2", "Mango Drift")
	p.Brand = "Tropic Haus"
	p.Status = "sold_out"
	_, err = svc.CreateProduct(ctx, p)
	require.NoError(t, err)

	byBrand, err := svc.ListProducts(ctx, ListFilters{Brand: "Tropic Haus"})
	require.NoError(t, err)
	require.Len(t, byBrand, 1)

	bySearch, err := svc.ListProducts(ctx, ListFilters{Search: "glacier"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	require.Equal(t, "Glacier Mint", bySearch[0].Name)

	byStatus, err := svc.ListProducts(ctx, ListFilters{Status: "sold_out"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
}

func TestAddBrand(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	first, err := svc.AddBrand(ctx, " Polar Labs ")
	require.NoError(t, err)
	require.Equal(t, Brand{Name: "Polar Labs", DisplayOrder: 0}, first)

	_, err = svc.AddBrand(ctx, "Polar Labs")
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	_, err = svc.AddBrand(ctx, "   ")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteBrandRenumbersAndDropsSubBrands(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.AddBrand(ctx, name)
		require.NoError(t, err)
	}
	require.NoError(t, svc.AddSubBrand(ctx, "B", "B-sub"))

	require.NoError(t, svc.DeleteBrand(ctx, "B"))

	brands, err := svc.ListBrands(ctx)
	require.NoError(t, err)
	require.Equal(t, []Brand{
		{Name: "A", DisplayOrder: 0},
		{Name: "C", DisplayOrder: 1},
	}, brands)

	subBrands, err := svc.SubBrands(ctx)
	require.NoError(t, err)
	require.NotContains(t, subBrands, "B")
}

func TestReorderBrands(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.AddBrand(ctx, name)
		require.NoError(t, err)
	}

	// Unnamed brands keep their relative order after the named ones.
	brands, err := svc.ReorderBrands(ctx, []string{"C", "A"})
	require.NoError(t, err)
	require.Equal(t, []Brand{
		{Name: "C", DisplayOrder: 0},
		{Name: "A", DisplayOrder: 1},
		{Name: "B", DisplayOrder: 2},
	}, brands)
}

func TestSubBrandLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	require.ErrorIs(t, svc.AddSubBrand(ctx, "Ghost", "x"), httpx.ErrNotFound)

	_, err := svc.AddBrand(ctx, "Polar Labs")
	require.NoError(t, err)
	require.NoError(t, svc.AddSubBrand(ctx, "Polar Labs", "Arctic"))
	require.ErrorIs(t, svc.AddSubBrand(ctx, "Polar Labs", "Arctic"), httpx.ErrDuplicate)

	require.NoError(t, svc.DeleteSubBrand(ctx, "Polar Labs", "Arctic"))
	require.ErrorIs(t, svc.DeleteSubBrand(ctx, "Polar Labs", "Arctic"), httpx.ErrNotFound)
}
