// Package cart maintains the order-line list: merging duplicate
// product+flavor entries and enforcing stock ceilings.
package cart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
	"github.com/vireo-shop/vireo/internal/platform/kv"
)

// LineItem is a denormalized cart entry; it carries enough of the product
// snapshot to render without another catalog read. Uniqueness key is
// (ProductID, SelectedFlavor).
type LineItem struct {
	ProductID      string  `json:"productId"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	Price          float64 `json:"price"`
	Brand          string  `json:"brand"`
	SelectedFlavor string  `json:"selectedFlavor"`
	FlavorImage    string  `json:"flavorImage"`
	Quantity       int     `json:"quantity"`
}

// Summary is the cart with its running total.
type Summary struct {
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
	Count int        `json:"count"`
}

// Service aggregates cart lines over the record store.
type Service struct {
	store  kv.Store
	repo   catalog.Repository
	logger *slog.Logger
}

// NewService wires the cart aggregator.
func NewService(store kv.Store, repo catalog.Repository, logger *slog.Logger) *Service {
	return &Service{store: store, repo: repo, logger: logger}
}

func (s *Service) load(ctx context.Context) ([]LineItem, error) {
	var items []LineItem
	if err := kv.GetJSON(ctx, s.store, kv.KeyCart, &items); err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, items []LineItem) error {
	if err := kv.SetJSON(ctx, s.store, kv.KeyCart, items); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// List returns the cart and its total.
func (s *Service) List(ctx context.Context) (Summary, error) {
	items, err := s.load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(items), nil
}

func summarize(items []LineItem) Summary {
	sum := Summary{Items: items}
	if sum.Items == nil {
		sum.Items = []LineItem{}
	}
	for _, item := range items {
		sum.Total += item.Price * float64(item.Quantity)
		sum.Count += item.Quantity
	}
	return sum
}

// AddLine adds quantity of a product+flavor to the cart, merging into an
// existing line when the pair already exists. A zero-stock product whose
// status is still "available" stays orderable (backorder allowance); the
// stock ceiling only applies when stock is positive.
func (s *Service) AddLine(ctx context.Context, productID string, quantity int, flavorName string) (Summary, error) {
	if quantity < 1 {
		return Summary{}, fmt.Errorf("%w: quantity must be at least 1", httpx.ErrValidation)
	}
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return Summary{}, err
	}
	if !product.Orderable() {
		return Summary{}, fmt.Errorf("%w: %q is out of stock", httpx.ErrInsufficientStock, product.Name)
	}

	resolvedFlavor, flavorImage := resolveFlavor(product, flavorName)

	items, err := s.load(ctx)
	if err != nil {
		return Summary{}, err
	}
	for i := range items {
		if !sameLine(items[i], product.ID, resolvedFlavor) {
			continue
		}
		next := items[i].Quantity + quantity
		if product.Stock > 0 && next > product.Stock {
			return Summary{}, fmt.Errorf("%w: only %d of %q in stock", httpx.ErrInsufficientStock, product.Stock, product.Name)
		}
		items[i].Quantity = next
		if err := s.save(ctx, items); err != nil {
			return Summary{}, err
		}
		return summarize(items), nil
	}

	if product.Stock > 0 && quantity > product.Stock {
		return Summary{}, fmt.Errorf("%w: only %d of %q in stock", httpx.ErrInsufficientStock, product.Stock, product.Name)
	}
	image := flavorImage
	if image == "" {
		image = product.DisplayImage()
	}
	items = append(items, LineItem{
		ProductID:      product.ID,
		Name:           product.Name,
		Image:          image,
		Price:          product.Price,
		Brand:          product.Brand,
		SelectedFlavor: resolvedFlavor,
		FlavorImage:    flavorImage,
		Quantity:       quantity,
	})
	if err := s.save(ctx, items); err != nil {
		return Summary{}, err
	}
	s.logger.Info("cart line added", "product", product.ID, "flavor", resolvedFlavor, "qty", quantity)
	return summarize(items), nil
}

// AdjustQuantity shifts a line's quantity by delta. Dropping below 1 removes
// the line; increases re-check the stock ceiling exactly like AddLine.
func (s *Service) AdjustQuantity(ctx context.Context, productID, flavorName string, delta int) (Summary, error) {
	return s.setQuantity(ctx, productID, flavorName, func(current int) int {
		return current + delta
	})
}

// SetQuantity pins a line's quantity. Below 1 removes the line.
func (s *Service) SetQuantity(ctx context.Context, productID, flavorName string, quantity int) (Summary, error) {
	return s.setQuantity(ctx, productID, flavorName, func(int) int {
		return quantity
	})
}

func (s *Service) setQuantity(ctx context.Context, productID, flavorName string, next func(int) int) (Summary, error) {
	items, err := s.load(ctx)
	if err != nil {
		return Summary{}, err
	}
	for i := range items {
		if !sameLine(items[i], productID, flavorName) {
			continue
		}
		target := next(items[i].Quantity)
		if target < 1 {
			items = append(items[:i], items[i+1:]...)
			if err := s.save(ctx, items); err != nil {
				return Summary{}, err
			}
			return summarize(items), nil
		}
		if target > items[i].Quantity {
			product, err := s.findProduct(ctx, productID)
			if err != nil {
				return Summary{}, err
			}
			if product.Stock > 0 && target > product.Stock {
				return Summary{}, fmt.Errorf("%w: only %d of %q in stock", httpx.ErrInsufficientStock, product.Stock, product.Name)
			}
		}
		items[i].Quantity = target
		if err := s.save(ctx, items); err != nil {
			return Summary{}, err
		}
		return summarize(items), nil
	}
	return Summary{}, fmt.Errorf("%w: cart line for product %q", httpx.ErrNotFound, productID)
}

// Remove deletes a line outright.
func (s *Service) Remove(ctx context.Context, productID, flavorName string) (Summary, error) {
	items, err := s.load(ctx)
	if err != nil {
		return Summary{}, err
	}
	for i := range items {
		if sameLine(items[i], productID, flavorName) {
			items = append(items[:i], items[i+1:]...)
			if err := s.save(ctx, items); err != nil {
				return Summary{}, err
			}
			return summarize(items), nil
		}
	}
	return Summary{}, fmt.Errorf("%w: cart line for product %q", httpx.ErrNotFound, productID)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	return s.save(ctx, []LineItem{})
}

func (s *Service) findProduct(ctx context.Context, id string) (catalog.Product, error) {
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	for _, p := range products {
		if catalog.SameID(p.ID, id) {
			return p, nil
		}
	}
	return catalog.Product{}, fmt.Errorf("%w: product %q", httpx.ErrNotFound, id)
}

// resolveFlavor picks the matching flavor, falling back to the first entry
// when the requested name matches nothing.
func resolveFlavor(p catalog.Product, requested string) (name, image string) {
	if len(p.Flavors) == 0 {
		return requested, ""
	}
	for _, f := range p.Flavors {
		if f.Name == requested {
			return f.Name, f.Image
		}
	}
	return p.Flavors[0].Name, p.Flavors[0].Image
}

func sameLine(item LineItem, productID, flavorName string) bool {
	return catalog.SameID(item.ProductID, productID) && item.SelectedFlavor == flavorName
}
