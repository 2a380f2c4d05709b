package excel

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/inventory"
)

// ReadFile opens a local workbook and returns its product and location tabs.
func ReadFile(path string) (entity.SheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return entity.SheetData{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f, filepath.Base(path))
}

// Read parses a workbook from r, e.g. a file downloaded from Drive.
func Read(r io.Reader, title string) (entity.SheetData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return entity.SheetData{}, fmt.Errorf("open workbook %s: %w", title, err)
	}
	defer f.Close()
	return readWorkbook(f, title)
}

func readWorkbook(f *excelize.File, title string) (entity.SheetData, error) {
	tabs := f.GetSheetList()
	if len(tabs) == 0 {
		return entity.SheetData{}, fmt.Errorf("workbook %s has no sheets", title)
	}
	productTab, locationTab := inventory.PickTabs(tabs)

	productRows, err := f.GetRows(productTab)
	if err != nil {
		return entity.SheetData{}, fmt.Errorf("read tab %q: %w", productTab, err)
	}

	data := entity.SheetData{
		Title:       title,
		ProductTab:  productTab,
		ProductRows: productRows,
	}
	if locationTab != "" {
		locationRows, err := f.GetRows(locationTab)
		if err != nil {
			return entity.SheetData{}, fmt.Errorf("read tab %q: %w", locationTab, err)
		}
		data.LocationTab = locationTab
		data.LocationRows = locationRows
	}

	log.Printf("[excel] %s: product tab %q (%d rows), location tab %q", title, productTab, len(productRows), locationTab)
	return data, nil
}

// FileSource reads the inventory from a workbook on disk.
type FileSource struct {
	path string
}

// NewFileSource creates a sheet source for a local .xlsx file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch re-reads the workbook on every call so edits are picked up.
func (s *FileSource) Fetch(ctx context.Context) (entity.SheetData, error) {
	if err := ctx.Err(); err != nil {
		return entity.SheetData{}, err
	}
	return ReadFile(s.path)
}

func (s *FileSource) Describe() string {
	return "xlsx:" + s.path
}
