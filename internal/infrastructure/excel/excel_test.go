package excel

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/inventory"
)

func writeWorkbook(t *testing.T, tabs map[string][][]string, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if current := f.GetSheetName(0); i == 0 && current != name {
			if err := f.SetSheetName(current, name); err != nil {
				t.Fatalf("SetSheetName() error = %v", err)
			}
		} else if i > 0 {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet() error = %v", err)
			}
		}
		for r, row := range tabs[name] {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				if err := f.SetCellValue(name, cell, v); err != nil {
					t.Fatalf("SetCellValue() error = %v", err)
				}
			}
		}
	}

	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	return path
}

func TestReadFile_PicksTabs(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Notes":     {{"ignore me"}},
		"Products":  {{"SKU", "Item", "Qty"}, {"W-100", "Widget", "12"}},
		"Locations": {{"SKU", "Branch", "Shelf", "Row", "Col"}, {"W-100", "Kigali", "3", "2", "B"}},
	}, []string{"Notes", "Products", "Locations"})

	data, err := NewFileSource(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if data.ProductTab != "Products" || data.LocationTab != "Locations" {
		t.Fatalf("tabs = (%q, %q), want (Products, Locations)", data.ProductTab, data.LocationTab)
	}
	if data.Title != "inventory.xlsx" {
		t.Fatalf("Title = %q, want inventory.xlsx", data.Title)
	}

	res := inventory.ParseSheet(data)
	if len(res.Products) != 1 || res.Products[0].ProductName != "Widget" {
		t.Fatalf("products = %+v", res.Products)
	}
	shelves := inventory.BuildShelves(res.Locations)
	if len(shelves) != 1 || shelves[0].ID != "Kigali-3" || shelves[0].Boxes[0].Position != "2B" {
		t.Fatalf("shelves = %+v", shelves)
	}
}

func TestReadFile_FirstTabFallback(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Sheet1": {{"SKU", "Branch", "Shelf"}, {"A1", "Main", "1"}},
	}, []string{"Sheet1"})

	data, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if data.ProductTab != "Sheet1" || data.HasLocationTab() {
		t.Fatalf("tabs = (%q, %q), want (Sheet1, none)", data.ProductTab, data.LocationTab)
	}
	if got := len(inventory.ParseSheet(data).Locations); got != 1 {
		t.Fatalf("locations = %d, want 1 from product rows", got)
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Fatalf("ReadFile() error = nil, want error")
	}
}

func TestBuildReport(t *testing.T) {
	sheet := []entity.Product{
		{SKU: "A", ProductName: "Alpha", Quantity: "5", Branch: "Main", Shelf: "1"},
		{SKU: "B", ProductName: "Beta", Quantity: "2"},
		{SKU: "C", ProductName: "Gamma", Quantity: "1"},
	}
	external := []entity.ExternalProduct{
		{ID: 1, SKU: "A", StockQuantity: "3", Status: "publish", CatalogVisibility: "visible", Price: "12.50"},
		{ID: 2, SKU: "B", StockQuantity: "2", Status: "publish", CatalogVisibility: "visible", Price: "1.10"},
		{ID: 3, SKU: "D", Name: "Delta", StockQuantity: "9", Status: "publish", CatalogVisibility: "visible", Price: "4"},
	}
	records := inventory.MatchBySKU(sheet, external)
	report := inventory.Reconcile(records, sheet, external, inventory.StrictVisibility)
	snap := entity.Snapshot{
		Products: sheet,
		External: external,
		Matches:  records,
		Shelves: inventory.BuildShelves([]entity.Location{
			{SKU: "A", Branch: "Main", Shelf: "1", Row: "1", Column: "A"},
		}),
	}

	if got := CatalogValue(records).StringFixed(2); got != "39.70" {
		t.Fatalf("CatalogValue() = %s, want 39.70", got)
	}

	data, err := BuildReport(snap, report, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	want := []string{sheetSummary, sheetMismatches, sheetPerfect, sheetSheetOnly, sheetExternalOnly, sheetShelves}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", got, want)
		}
	}

	rows, err := f.GetRows(sheetMismatches)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("mismatch rows = %d, want header + 1", len(rows))
	}
	if rows[1][0] != "A" || rows[1][2] != "5" || rows[1][3] != "3" || rows[1][4] != "2" || rows[1][5] != "12.5" {
		t.Fatalf("mismatch row = %v", rows[1])
	}

	rows, _ = f.GetRows(sheetExternalOnly)
	if len(rows) != 2 || rows[1][1] != "D" {
		t.Fatalf("external only rows = %v", rows)
	}

	rows, _ = f.GetRows(sheetShelves)
	if len(rows) != 2 || rows[1][0] != "Main-1" || rows[1][2] != "1x1" {
		t.Fatalf("shelf rows = %v", rows)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteReport(path, entity.Snapshot{}, entity.ReconciliationReport{}, time.Now()); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(sheetSummary)
	if len(rows) == 0 || rows[0][0] != "Metric" {
		t.Fatalf("summary rows = %v", rows)
	}
}
