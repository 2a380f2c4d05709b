package inventory

import (
	"strings"

	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// ShelfHit so'rovga mos kelgan javon. Javonning o'zi mos kelmasa, moslikka sabab
// bo'lgan birinchi mahsulot ham beriladi.
type ShelfHit struct {
	Shelf   entity.Shelf    `json:"shelf"`
	Product *entity.Product `json:"product,omitempty"`
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func containsFold(value, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(value), lowerQuery)
}

func productMatches(p entity.Product, q string) bool {
	return containsFold(p.SKU, q) ||
		containsFold(p.ProductName, q) ||
		containsFold(p.Category, q) ||
		containsFold(p.Description, q)
}

// FilterProducts SKU, nom, kategoriya yoki tavsifida so'rov (registrga qaramay)
// uchragan mahsulotlarni qoldiradi. Bo'sh so'rovda ro'yxat o'zgarmaydi.
func FilterProducts(products []entity.Product, query string) []entity.Product {
	q := normalizeQuery(query)
	if q == "" {
		return products
	}
	out := []entity.Product{}
	for _, p := range products {
		if productMatches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

// SearchShelves javonlarni nomi yoki filiali bo'yicha, yoki kataklaridagi mos
// mahsulotga tegishli SKU bo'yicha topadi.
func SearchShelves(shelves []entity.Shelf, products []entity.Product, query string) []ShelfHit {
	q := normalizeQuery(query)
	hits := make([]ShelfHit, 0, len(shelves))
	if q == "" {
		for _, s := range shelves {
			hits = append(hits, ShelfHit{Shelf: s})
		}
		return hits
	}

	bySKU := make(map[string]int, len(products))
	for i, p := range products {
		if _, ok := bySKU[p.SKU]; !ok {
			bySKU[p.SKU] = i
		}
	}

	for _, s := range shelves {
		if containsFold(s.Name, q) || containsFold(s.Branch, q) {
			hits = append(hits, ShelfHit{Shelf: s})
			continue
		}
		if p := firstMatchingProduct(s, products, bySKU, q); p != nil {
			hits = append(hits, ShelfHit{Shelf: s, Product: p})
		}
	}
	return hits
}

func firstMatchingProduct(s entity.Shelf, products []entity.Product, bySKU map[string]int, q string) *entity.Product {
	for _, box := range s.Boxes {
		for _, sku := range box.Products {
			i, ok := bySKU[sku]
			if !ok {
				continue
			}
			if productMatches(products[i], q) {
				p := products[i]
				return &p
			}
		}
	}
	return nil
}

// FilterShelves SearchShelves ning tafsilotsiz ko'rinishi. Bo'sh so'rovda
// ro'yxat o'zgarmaydi.
func FilterShelves(shelves []entity.Shelf, products []entity.Product, query string) []entity.Shelf {
	if normalizeQuery(query) == "" {
		return shelves
	}
	hits := SearchShelves(shelves, products, query)
	out := make([]entity.Shelf, len(hits))
	for i, h := range hits {
		out[i] = h.Shelf
	}
	return out
}

// FilterMatches mahsulot filtrini har bir yozuvning jadval mahsulotiga qo'llaydi
func FilterMatches(records []entity.MatchRecord, query string) []entity.MatchRecord {
	q := normalizeQuery(query)
	if q == "" {
		return records
	}
	out := []entity.MatchRecord{}
	for _, r := range records {
		if productMatches(r.SheetProduct, q) {
			out = append(out, r)
		}
	}
	return out
}
