package bulk

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vireo-shop/vireo/internal/catalog"
	"github.com/vireo-shop/vireo/internal/platform/httpx"
)

// Parse dispatches on the file extension and returns normalized products.
// Rows missing a name are discarded; rows missing an ID get a generated one
// so uniqueness holds across concurrent imports.
func Parse(filename string, r io.Reader) ([]catalog.Product, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return parseJSON(r)
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: unsupported import format %q", httpx.ErrValidation, filepath.Ext(filename))
	}
}

func parseJSON(r io.Reader) ([]catalog.Product, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var records []catalog.ProductRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON import: %v", httpx.ErrValidation, err)
	}
	return finalize(records), nil
}

func parseCSV(r io.Reader) ([]catalog.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed CSV import: %v", httpx.ErrValidation, err)
	}
	return fromRows(rows)
}

func parseXLSX(r io.Reader) ([]catalog.Product, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed XLSX import: %v", httpx.ErrValidation, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read XLSX sheet: %v", httpx.ErrValidation, err)
	}
	return fromRows(rows)
}

// fromRows maps a tabular form onto products. The first row is a header
// whose cells are matched case-insensitively against the interchange column
// set; unknown columns are ignored.
func fromRows(rows [][]string) ([]catalog.Product, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: import file is empty", httpx.ErrValidation)
	}
	columns := map[string]int{}
	for i, cell := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("%w: import header is missing a Name column", httpx.ErrValidation)
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]catalog.ProductRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := catalog.ProductRecord{
			ID:     catalog.FlexID(cell(row, "id")),
			Name:   cell(row, "name"),
			Brand:  cell(row, "brand"),
			Flavor: cell(row, "flavor"),
		}
		if raw := cell(row, "price"); raw != "" {
			if price, err := strconv.ParseFloat(raw, 64); err == nil {
				rec.Price = &price
			}
		}
		if raw := cell(row, "stock"); raw != "" {
			if stock, err := strconv.Atoi(raw); err == nil {
				rec.Stock = &stock
			}
		}
		if status := cell(row, "status"); status != "" {
			rec.Status = &status
		}
		if image := cell(row, "image"); image != "" {
			rec.Image = &image
		}
		records = append(records, rec)
	}
	return finalize(records), nil
}

// finalize normalizes records, drops nameless rows and fills missing IDs.
func finalize(records []catalog.ProductRecord) []catalog.Product {
	products := make([]catalog.Product, 0, len(records))
	for _, rec := range records {
		p := rec.Normalize()
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		if p.ID == "" {
			p.ID = catalog.NewProductID()
		}
		products = append(products, p)
	}
	return products
}

// ParseBundle decodes a full-store export bundle, rejecting payloads that
// lack the version tag.
func ParseBundle(r io.Reader) (Bundle, error) {
	var bundle Bundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return Bundle{}, fmt.Errorf("%w: malformed bundle: %v", httpx.ErrValidation, err)
	}
	if bundle.Version == "" {
		return Bundle{}, fmt.Errorf("%w: bundle is missing its version tag", httpx.ErrValidation)
	}
	return bundle, nil
}
