package catalog

import (
	"fmt"
	"strings"

	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

func validateProduct(p Product, creating bool) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(p.Brand) == "" {
		return fmt.Errorf("%w: product brand is required", httpx.ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", httpx.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", httpx.ErrValidation)
	}
	if creating && p.DisplayImage() == "" {
		return fmt.Errorf("%w: an image is required when creating a product", httpx.ErrValidation)
	}
	for _, f := range p.Flavors {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: every flavor needs a name", httpx.ErrValidation)
		}
	}
	return nil
}
