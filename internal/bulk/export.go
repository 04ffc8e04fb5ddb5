// Package bulk converts the catalog to and from interchange formats (JSON,
// CSV, XLSX) and applies imported sets with merge or replace semantics.
package bulk

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/vireo-shop/vireo/internal/catalog"
)

// Header is the fixed interchange column order shared by CSV and XLSX.
var Header = []string{"ID", "Name", "Brand", "Flavor", "Price", "Stock", "Status", "Image"}

// sheetName is the products sheet in XLSX exports.
const sheetName = "Products"

// WriteJSON serialises the full product list as pretty-printed JSON,
// suitable for a full-fidelity round trip.
func WriteJSON(w io.Writer, products []catalog.Product) error {
	records := make([]catalog.ProductRecord, 0, len(products))
	for _, p := range products {
		records = append(records, p.Record())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV emits the fixed-column CSV form with standard quote escaping.
func WriteCSV(w io.Writer, products []catalog.Product) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, p := range products {
		if err := writer.Write(row(p)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX emits a single-sheet workbook with the interchange columns and
// explicit column-width hints.
func WriteXLSX(w io.Writer, products []catalog.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetName)

	widths := []float64{18, 32, 20, 20, 10, 8, 14, 40}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, p := range products {
		cells := row(p)
		values := make([]any, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func row(p catalog.Product) []string {
	return []string{
		p.ID,
		p.Name,
		p.Brand,
		p.Flavor,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		strconv.Itoa(p.Stock),
		p.Status,
		p.Image,
	}
}

// Bundle is the top-level export envelope carrying the whole store state.
// Importers reject a bundle lacking the version tag.
type Bundle struct {
	Version          string                  `json:"version" validate:"required"`
	ExportDate       string                  `json:"exportDate"`
	StoreName        string                  `json:"storeName"`
	Products         []catalog.ProductRecord `json:"products"`
	Brands           []catalog.Brand         `json:"brands"`
	Flavors          []string                `json:"flavors"`
	SliderImages     []string                `json:"sliderImages"`
	FeaturedProducts []string                `json:"featuredProducts"`
}

// WriteBundle serialises the bundle as pretty JSON.
func WriteBundle(w io.Writer, bundle Bundle) error {
	if bundle.Version == "" {
		return fmt.Errorf("bulk: bundle version must be set")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}
