package entity

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// StockValue WooCommerce stock_quantity (son, matn yoki null bo'lishi mumkin)
type StockValue string

// UnmarshalJSON son, matn va null qiymatlarni qabul qiladi
func (s *StockValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = StockValue(str)
		return nil
	}
	*s = StockValue(raw)
	return nil
}

// ExternalImage mahsulot rasmi
type ExternalImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// ExternalProduct tashqi katalog (WooCommerce) yozuvi. Qolgan maydonlar e'tiborsiz qoldiriladi.
type ExternalProduct struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	StockQuantity     StockValue      `json:"stock_quantity"`
	Status            string          `json:"status"`
	CatalogVisibility string          `json:"catalog_visibility"`
	Price             string          `json:"price,omitempty"`
	Images            []ExternalImage `json:"images,omitempty"`
}

// PriceDecimal narxni decimal ko'rinishda qaytaradi; bo'sh yoki noto'g'ri bo'lsa ok=false
func (p ExternalProduct) PriceDecimal() (decimal.Decimal, bool) {
	raw := strings.TrimSpace(p.Price)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// MatchRecord jadval mahsulotini tashqi katalog bilan SKU bo'yicha solishtirish natijasi
type MatchRecord struct {
	SKU              string           `json:"sku"`
	SheetProduct     Product          `json:"sheet_product"`
	ExternalProduct  *ExternalProduct `json:"external_product"`
	Matched          bool             `json:"matched"`
	SheetQuantity    int              `json:"sheet_quantity"`
	ExternalQuantity *int             `json:"external_quantity"`
}

// Difference sheet va tashqi miqdor farqi (faqat matched bo'lsa)
func (m MatchRecord) Difference() int {
	if m.ExternalQuantity == nil {
		return 0
	}
	return m.SheetQuantity - *m.ExternalQuantity
}

// ReconciliationReport to'rtta hosila ko'rinish
type ReconciliationReport struct {
	PerfectMatches []MatchRecord     `json:"perfect_matches"`
	Mismatches     []MatchRecord     `json:"mismatches"`
	SheetOnly      []MatchRecord     `json:"sheet_only"`
	ExternalOnly   []ExternalProduct `json:"external_only"`
}
