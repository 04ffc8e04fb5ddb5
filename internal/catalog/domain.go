// Package catalog holds the product domain: records, legacy-shape
// normalization, persistence over the record store, and admin operations.
package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatusAvailable is the only status value consumption sites compare against.
const StatusAvailable = "available"

// FlexID accepts either a JSON string or a JSON number and canonicalises to
// string. IDs arrive both ways depending on entry path (hand-authored, bulk
// import, timestamp-generated).
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("catalog: id is neither string nor number: %w", err)
	}
	*f = FlexID(num.String())
	return nil
}

// Flavor is a single product variant.
type Flavor struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Complete reports whether the flavor carries both a name and an image.
func (f Flavor) Complete() bool {
	return strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Image) != ""
}

// Brand is a catalog brand. Legacy installs stored bare name strings; current
// installs store objects with an explicit display order.
type Brand struct {
	Name         string `json:"name"`
	DisplayOrder int    `json:"displayOrder"`
}

func (b *Brand) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*b = Brand{Name: name}
		return nil
	}
	type alias Brand
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*b = Brand(out)
	return nil
}

// Product is the canonical, fully-normalized product shape. Downstream logic
// never branches on legacy schema variants; ProductRecord.Normalize is the
// single place legacy shapes are folded in.
type Product struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Brand            string   `json:"brand"`
	Price            float64  `json:"price"`
	Stock            int      `json:"stock"`
	Status           string   `json:"status"`
	Flavor           string   `json:"flavor"`
	Flavors          []Flavor `json:"flavors"`
	Image            string   `json:"image,omitempty"`
	AdditionalImages []string `json:"additionalImages,omitempty"`
	Description      string   `json:"description,omitempty"`
	Specs            []string `json:"specs,omitempty"`
}

// SyncLegacyFlavor re-establishes the mirror invariant: flavor always equals
// flavors[0].name when flavors is non-empty.
func (p *Product) SyncLegacyFlavor() {
	if len(p.Flavors) > 0 {
		p.Flavor = p.Flavors[0].Name
	}
}

// DisplayImage is the image consumption sites should render: the primary
// image, or the first flavor's image when the primary is absent.
func (p Product) DisplayImage() string {
	if p.Image != "" {
		return p.Image
	}
	if len(p.Flavors) > 0 {
		return p.Flavors[0].Image
	}
	return ""
}

// Orderable reports whether cart additions are allowed. A zero-stock product
// whose status is still "available" remains orderable (backorder allowance).
func (p Product) Orderable() bool {
	return p.Stock > 0 || p.Status == StatusAvailable
}

// ProductRecord is the shape products take on the storage and interchange
// boundary. Pointer fields distinguish "explicitly zero" from "absent", which
// the reconciler's field-level merge depends on.
type ProductRecord struct {
	ID               FlexID   `json:"id"`
	Name             string   `json:"name"`
	Brand            string   `json:"brand"`
	Price            *float64 `json:"price,omitempty"`
	Stock            *int     `json:"stock,omitempty"`
	Status           *string  `json:"status,omitempty"`
	Flavor           string   `json:"flavor,omitempty"`
	Flavors          []Flavor `json:"flavors,omitempty"`
	Image            *string  `json:"image,omitempty"`
	AdditionalImages []string `json:"additionalImages,omitempty"`
	Description      *string  `json:"description,omitempty"`
	Specs            []string `json:"specs,omitempty"`
}

// Normalize folds legacy shapes into the canonical Product: string IDs,
// defaulted scalars, single-flavor back-compat, and the mirror invariant.
func (r ProductRecord) Normalize() Product {
	p := Product{
		ID:               strings.TrimSpace(string(r.ID)),
		Name:             r.Name,
		Brand:            r.Brand,
		Flavors:          r.Flavors,
		AdditionalImages: r.AdditionalImages,
		Specs:            r.Specs,
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Status != nil {
		p.Status = *r.Status
	} else {
		p.Status = StatusAvailable
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	// Legacy installs carried a single flavor string and no flavors list.
	if len(p.Flavors) == 0 && strings.TrimSpace(r.Flavor) != "" {
		p.Flavors = []Flavor{{Name: strings.TrimSpace(r.Flavor), Image: p.Image}}
	}
	if len(p.Flavors) > 0 {
		p.Flavor = p.Flavors[0].Name
	} else {
		p.Flavor = r.Flavor
	}
	return p
}

// Record converts a canonical product back to the storage shape.
func (p Product) Record() ProductRecord {
	price := p.Price
	stock := p.Stock
	status := p.Status
	image := p.Image
	desc := p.Description
	return ProductRecord{
		ID:               FlexID(p.ID),
		Name:             p.Name,
		Brand:            p.Brand,
		Price:            &price,
		Stock:            &stock,
		Status:           &status,
		Flavor:           p.Flavor,
		Flavors:          p.Flavors,
		Image:            &image,
		AdditionalImages: p.AdditionalImages,
		Description:      &desc,
		Specs:            p.Specs,
	}
}

// SameID compares two identifiers with string normalization and a trimmed
// fallback, tolerating numeric IDs and incidental whitespace in hand-edited
// values.
func SameID(a, b string) bool {
	if a == b {
		return true
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// NewProductID generates a unique identifier: unix-milli timestamp plus a
// short random suffix, unique across concurrent imports.
func NewProductID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + suffix
}
