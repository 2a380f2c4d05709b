package inventory

import (
	"strings"

	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// ParseResult bitta jadval manbaining tiplangan natijasi
type ParseResult struct {
	Products  []entity.Product  `json:"products"`
	Locations []entity.Location `json:"locations"`
	Mapping   HeaderMapping     `json:"mapping"`

	// LocationMapping faqat alohida lokatsiya varag'i o'qilganda to'ldiriladi
	LocationMapping *HeaderMapping `json:"location_mapping,omitempty"`
}

type fieldReader struct {
	index map[Field]int
}

func newFieldReader(header []string, mapping HeaderMapping) fieldReader {
	r := fieldReader{index: make(map[Field]int, len(mapping.Fields))}
	for field, h := range mapping.Fields {
		for i, raw := range header {
			if raw == h {
				r.index[field] = i
				break
			}
		}
	}
	return r
}

func (r fieldReader) value(row []string, field Field) string {
	i, ok := r.index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseProducts har bir qatorni Product ga aylantiradi. Identifikatorsiz qatorlar tashlanadi.
func ParseProducts(header []string, rows [][]string) ([]entity.Product, HeaderMapping) {
	mapping := MapHeaders(header)
	r := newFieldReader(header, mapping)

	products := make([]entity.Product, 0, len(rows))
	for _, row := range rows {
		p := entity.Product{
			SKU:         r.value(row, FieldSKU),
			ProductName: r.value(row, FieldProductName),
			Category:    r.value(row, FieldCategory),
			Description: r.value(row, FieldDescription),
			Quantity:    r.value(row, FieldQuantity),
			Branch:      r.value(row, FieldBranch),
			Shelf:       r.value(row, FieldShelf),
			Row:         r.value(row, FieldRow),
			Column:      r.value(row, FieldColumn),
			Box:         r.value(row, FieldBox),
		}
		if p.SKU == "" {
			continue
		}
		products = append(products, p)
	}
	return products, mapping
}

// ParseLocations alohida lokatsiya varag'ini o'qiydi. Qatorda sku, filial va javon bo'lishi shart.
func ParseLocations(header []string, rows [][]string) ([]entity.Location, HeaderMapping) {
	mapping := MapHeaders(header)
	r := newFieldReader(header, mapping)

	locations := make([]entity.Location, 0, len(rows))
	for _, row := range rows {
		l := entity.Location{
			SKU:    r.value(row, FieldSKU),
			Branch: r.value(row, FieldBranch),
			Shelf:  r.value(row, FieldShelf),
			Row:    r.value(row, FieldRow),
			Column: r.value(row, FieldColumn),
			Box:    r.value(row, FieldBox),
		}
		if !validLocation(l) {
			continue
		}
		locations = append(locations, l)
	}
	return locations, mapping
}

// LocationsFromProducts mahsulot qatoridagi lokatsiya ustunlaridan joy yasaydi.
// Bir xil kataklar uchun natija ParseLocations bilan bir xil.
func LocationsFromProducts(products []entity.Product) []entity.Location {
	locations := make([]entity.Location, 0, len(products))
	for _, p := range products {
		l := entity.Location{
			SKU:    strings.TrimSpace(p.SKU),
			Branch: strings.TrimSpace(p.Branch),
			Shelf:  strings.TrimSpace(p.Shelf),
			Row:    strings.TrimSpace(p.Row),
			Column: strings.TrimSpace(p.Column),
			Box:    strings.TrimSpace(p.Box),
		}
		if !validLocation(l) {
			continue
		}
		locations = append(locations, l)
	}
	return locations
}

func validLocation(l entity.Location) bool {
	return strings.TrimSpace(l.SKU) != "" &&
		strings.TrimSpace(l.Branch) != "" &&
		strings.TrimSpace(l.Shelf) != ""
}

// Parse to'liq mahsulot jadvalini (birinchi qator sarlavha) o'qiydi va
// lokatsiyalarni mahsulot qatorlaridan oladi.
func Parse(rows [][]string) ParseResult {
	if len(rows) == 0 {
		return ParseResult{Mapping: HeaderMapping{Fields: map[Field]string{}}}
	}
	products, mapping := ParseProducts(rows[0], rows[1:])
	return ParseResult{
		Products:  products,
		Locations: LocationsFromProducts(products),
		Mapping:   mapping,
	}
}

// ParseSheet yuklangan manbani o'qiydi. Alohida lokatsiya varag'i bo'lsa, u
// mahsulot qatorlaridan olingan joylardan ustun.
func ParseSheet(data entity.SheetData) ParseResult {
	result := Parse(data.ProductRows)
	if !data.HasLocationTab() {
		return result
	}
	if len(data.LocationRows) == 0 {
		result.Locations = []entity.Location{}
		result.LocationMapping = &HeaderMapping{Fields: map[Field]string{}}
		return result
	}
	locations, mapping := ParseLocations(data.LocationRows[0], data.LocationRows[1:])
	result.Locations = locations
	result.LocationMapping = &mapping
	return result
}

// PickTabs mahsulot varag'ini (nomida "product" bo'lgan birinchisi, aks holda
// birinchi varaq) va lokatsiya varag'ini (nomida "location" bo'lgan birinchisi) tanlaydi.
func PickTabs(titles []string) (productTab, locationTab string) {
	if len(titles) == 0 {
		return "", ""
	}
	productTab = titles[0]
	for _, t := range titles {
		if strings.Contains(strings.ToLower(t), "product") {
			productTab = t
			break
		}
	}
	for _, t := range titles {
		if strings.Contains(strings.ToLower(t), "location") {
			locationTab = t
			break
		}
	}
	return productTab, locationTab
}
