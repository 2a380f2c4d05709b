package excel

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/inventory"
)

const (
	sheetSummary      = "Summary"
	sheetMismatches   = "Mismatches"
	sheetPerfect      = "Perfect Matches"
	sheetSheetOnly    = "Sheet Only"
	sheetExternalOnly = "External Only"
	sheetShelves      = "Shelves"
)

// CatalogValue sums price x catalog stock over matched records with a price.
func CatalogValue(records []entity.MatchRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if !r.Matched || r.ExternalProduct == nil || r.ExternalQuantity == nil {
			continue
		}
		price, ok := r.ExternalProduct.PriceDecimal()
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(*r.ExternalQuantity))))
	}
	return total
}

// BuildReport renders the reconciliation views and shelf stats as an xlsx workbook.
func BuildReport(snap entity.Snapshot, report entity.ReconciliationReport, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	if err := f.SetSheetName(first, sheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetMismatches, sheetPerfect, sheetSheetOnly, sheetExternalOnly, sheetShelves} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	summary := [][]interface{}{
		{"Generated", generatedAt.Format(time.RFC3339)},
		{"Products", len(snap.Products)},
		{"Locations", len(snap.Locations)},
		{"Shelves", len(snap.Shelves)},
		{"Catalog products", len(snap.External)},
		{"Perfect matches", len(report.PerfectMatches)},
		{"Quantity mismatches", len(report.Mismatches)},
		{"Sheet only", len(report.SheetOnly)},
		{"Catalog only", len(report.ExternalOnly)},
		{"Catalog stock value", CatalogValue(snap.Matches).StringFixed(2)},
	}
	if !snap.Inventory.LastSync.IsZero() {
		summary = append(summary, []interface{}{"Inventory synced", snap.Inventory.LastSync.Format(time.RFC3339)})
	}
	if !snap.Catalog.LastSync.IsZero() {
		summary = append(summary, []interface{}{"Catalog synced", snap.Catalog.LastSync.Format(time.RFC3339)})
	}
	if err := writeTable(f, sheetSummary, []string{"Metric", "Value"}, summary); err != nil {
		return nil, err
	}

	mismatches := make([][]interface{}, 0, len(report.Mismatches))
	for _, r := range report.Mismatches {
		mismatches = append(mismatches, []interface{}{
			r.SKU,
			r.SheetProduct.ProductName,
			r.SheetQuantity,
			externalQuantity(r),
			r.Difference(),
			priceCell(r.ExternalProduct),
			r.SheetProduct.Branch,
			r.SheetProduct.Shelf,
		})
	}
	if err := writeTable(f, sheetMismatches,
		[]string{"SKU", "Product", "Sheet Qty", "Catalog Qty", "Difference", "Price", "Branch", "Shelf"},
		mismatches); err != nil {
		return nil, err
	}

	perfect := make([][]interface{}, 0, len(report.PerfectMatches))
	for _, r := range report.PerfectMatches {
		perfect = append(perfect, []interface{}{r.SKU, r.SheetProduct.ProductName, r.SheetQuantity, priceCell(r.ExternalProduct)})
	}
	if err := writeTable(f, sheetPerfect, []string{"SKU", "Product", "Qty", "Price"}, perfect); err != nil {
		return nil, err
	}

	sheetOnly := make([][]interface{}, 0, len(report.SheetOnly))
	for _, r := range report.SheetOnly {
		sheetOnly = append(sheetOnly, []interface{}{
			r.SKU, r.SheetProduct.ProductName, r.SheetQuantity, r.SheetProduct.Branch, r.SheetProduct.Shelf,
		})
	}
	if err := writeTable(f, sheetSheetOnly, []string{"SKU", "Product", "Qty", "Branch", "Shelf"}, sheetOnly); err != nil {
		return nil, err
	}

	externalOnly := make([][]interface{}, 0, len(report.ExternalOnly))
	for i := range report.ExternalOnly {
		p := report.ExternalOnly[i]
		externalOnly = append(externalOnly, []interface{}{
			p.ID, p.SKU, p.Name, inventory.ParseQuantity(string(p.StockQuantity)), p.Status, p.CatalogVisibility, priceCell(&p),
		})
	}
	if err := writeTable(f, sheetExternalOnly,
		[]string{"ID", "SKU", "Name", "Stock", "Status", "Visibility", "Price"},
		externalOnly); err != nil {
		return nil, err
	}

	shelves := make([][]interface{}, 0, len(snap.Shelves))
	for _, s := range snap.Shelves {
		st := inventory.Stats(s)
		shelves = append(shelves, []interface{}{
			s.ID,
			s.Name,
			fmt.Sprintf("%dx%d", s.MaxRow, s.MaxColumn),
			st.TotalBoxes,
			st.FilledBoxes,
			st.TotalProducts,
			decimal.NewFromFloat(st.Utilization).Round(1).InexactFloat64(),
			string(st.Level),
		})
	}
	if err := writeTable(f, sheetShelves,
		[]string{"ID", "Name", "Grid", "Boxes", "Filled", "SKUs", "Utilization %", "Level"},
		shelves); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReport builds the report and writes it to path.
func WriteReport(path string, snap entity.Snapshot, report entity.ReconciliationReport, generatedAt time.Time) error {
	data, err := BuildReport(snap, report, generatedAt)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func externalQuantity(r entity.MatchRecord) interface{} {
	if r.ExternalQuantity == nil {
		return ""
	}
	return *r.ExternalQuantity
}

func priceCell(p *entity.ExternalProduct) interface{} {
	if p == nil {
		return ""
	}
	d, ok := p.PriceDecimal()
	if !ok {
		return ""
	}
	return d.Round(2).InexactFloat64()
}
