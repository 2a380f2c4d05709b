package inventory

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// VisibilityPolicy tashqi yozuv ochiq ro'yxatda hisoblanadimi
type VisibilityPolicy func(p entity.ExternalProduct) bool

// StrictVisibility faqat publish holatdagi va katalogda visible mahsulot
func StrictVisibility(p entity.ExternalProduct) bool {
	return p.Status == "publish" && p.CatalogVisibility == "visible"
}

// PermissiveVisibility faqat private va hidden yozuvlarni chiqarib tashlaydi
func PermissiveVisibility(p entity.ExternalProduct) bool {
	return p.Status != "private" && p.CatalogVisibility != "hidden"
}

// PolicyByName "strict" yoki "permissive" nomidan siyosat; boshqasi strict
func PolicyByName(name string) VisibilityPolicy {
	if strings.EqualFold(strings.TrimSpace(name), "permissive") {
		return PermissiveVisibility
	}
	return StrictVisibility
}

// MatchBySKU jadval mahsulotlarini tashqi katalog bilan strict siyosatda solishtiradi
func MatchBySKU(sheet []entity.Product, external []entity.ExternalProduct) []entity.MatchRecord {
	return MatchWithPolicy(sheet, external, StrictVisibility)
}

// MatchWithPolicy SKU si bo'sh bo'lmagan har bir jadval mahsuloti uchun bitta yozuv
// qaytaradi. Moslik: massiv tartibida SKU si teng bo'lgan birinchi ko'rinadigan
// tashqi yozuv.
func MatchWithPolicy(sheet []entity.Product, external []entity.ExternalProduct, visible VisibilityPolicy) []entity.MatchRecord {
	if visible == nil {
		visible = StrictVisibility
	}

	index := make(map[string]int, len(external))
	for i := range external {
		sku := strings.TrimSpace(external[i].SKU)
		if sku == "" || !visible(external[i]) {
			continue
		}
		if _, seen := index[sku]; !seen {
			index[sku] = i
		}
	}

	records := make([]entity.MatchRecord, 0, len(sheet))
	for _, p := range sheet {
		sku := strings.TrimSpace(p.SKU)
		if sku == "" {
			continue
		}
		rec := entity.MatchRecord{
			SKU:           sku,
			SheetProduct:  p,
			SheetQuantity: ParseQuantity(p.Quantity),
		}
		if i, ok := index[sku]; ok {
			ext := external[i]
			qty := ParseQuantity(string(ext.StockQuantity))
			rec.ExternalProduct = &ext
			rec.ExternalQuantity = &qty
			rec.Matched = true
		}
		records = append(records, rec)
	}
	return records
}

// SheetOnly tashqi katalogda jufti yo'q yozuvlar
func SheetOnly(records []entity.MatchRecord) []entity.MatchRecord {
	return filterRecords(records, func(r entity.MatchRecord) bool { return !r.Matched })
}

// PerfectMatches miqdorlari teng bo'lgan mos yozuvlar
func PerfectMatches(records []entity.MatchRecord) []entity.MatchRecord {
	return filterRecords(records, func(r entity.MatchRecord) bool {
		return r.Matched && r.ExternalQuantity != nil && r.SheetQuantity == *r.ExternalQuantity
	})
}

// Mismatches miqdorlari farq qiladigan mos yozuvlar
func Mismatches(records []entity.MatchRecord) []entity.MatchRecord {
	return filterRecords(records, func(r entity.MatchRecord) bool {
		return r.Matched && r.ExternalQuantity != nil && r.SheetQuantity != *r.ExternalQuantity
	})
}

// ExternalOnly jadvalda mahsuloti yo'q ko'rinadigan tashqi yozuvlar
func ExternalOnly(sheet []entity.Product, external []entity.ExternalProduct, visible VisibilityPolicy) []entity.ExternalProduct {
	if visible == nil {
		visible = StrictVisibility
	}
	skus := make(map[string]struct{}, len(sheet))
	for _, p := range sheet {
		if sku := strings.TrimSpace(p.SKU); sku != "" {
			skus[sku] = struct{}{}
		}
	}
	out := []entity.ExternalProduct{}
	for _, ext := range external {
		sku := strings.TrimSpace(ext.SKU)
		if sku == "" || !visible(ext) {
			continue
		}
		if _, ok := skus[sku]; !ok {
			out = append(out, ext)
		}
	}
	return out
}

// Reconcile to'rtta hosila ko'rinishni yig'adi
func Reconcile(records []entity.MatchRecord, sheet []entity.Product, external []entity.ExternalProduct, visible VisibilityPolicy) entity.ReconciliationReport {
	return entity.ReconciliationReport{
		PerfectMatches: PerfectMatches(records),
		Mismatches:     Mismatches(records),
		SheetOnly:      SheetOnly(records),
		ExternalOnly:   ExternalOnly(sheet, external, visible),
	}
}

func filterRecords(records []entity.MatchRecord, keep func(entity.MatchRecord) bool) []entity.MatchRecord {
	out := []entity.MatchRecord{}
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Matcher oxirgi MatchWithPolicy natijasini ikkala kirishning kontent izi bo'yicha
// keshlaydi. Keshni tashlash natijani o'zgartirmaydi.
type Matcher struct {
	visible VisibilityPolicy

	mu      sync.Mutex
	key     string
	records []entity.MatchRecord

	hits   int64
	misses int64
}

// NewMatcher berilgan ko'rinish siyosati bilan yangi matcher
func NewMatcher(visible VisibilityPolicy) *Matcher {
	if visible == nil {
		visible = StrictVisibility
	}
	return &Matcher{visible: visible}
}

// Policy matcher ning ko'rinish siyosati
func (m *Matcher) Policy() VisibilityPolicy {
	return m.visible
}

// Match moslik yozuvlarini qaytaradi; kirishlar o'zgarmagan bo'lsa keshdan oladi
func (m *Matcher) Match(sheet []entity.Product, external []entity.ExternalProduct) []entity.MatchRecord {
	key := fingerprint(sheet, external)

	m.mu.Lock()
	if m.records != nil && m.key == key {
		m.hits++
		out := cloneRecords(m.records)
		m.mu.Unlock()
		return out
	}
	m.misses++
	m.mu.Unlock()

	records := MatchWithPolicy(sheet, external, m.visible)

	m.mu.Lock()
	m.key = key
	m.records = records
	m.mu.Unlock()

	return cloneRecords(records)
}

// cloneRecords yozuvlarni ko'rsatkich maydonlari bilan birga nusxalaydi, shunda kesh tashqaridan o'zgarmaydi
func cloneRecords(records []entity.MatchRecord) []entity.MatchRecord {
	out := make([]entity.MatchRecord, len(records))
	for i, r := range records {
		if r.ExternalProduct != nil {
			p := *r.ExternalProduct
			p.Images = append([]entity.ExternalImage(nil), p.Images...)
			r.ExternalProduct = &p
		}
		if r.ExternalQuantity != nil {
			q := *r.ExternalQuantity
			r.ExternalQuantity = &q
		}
		out[i] = r
	}
	return out
}

// Reset keshni tozalaydi
func (m *Matcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = ""
	m.records = nil
}

// Stats kesh hit/miss hisoblagichlari
func (m *Matcher) Stats() (hits, misses int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

func fingerprint(sheet []entity.Product, external []entity.ExternalProduct) string {
	payload, err := json.Marshal(struct {
		Sheet    []entity.Product         `json:"s"`
		External []entity.ExternalProduct `json:"e"`
	}{sheet, external})
	if err != nil {
		// Oddiy structlar uchun bo'lmaydi; o'lchamlarga qaytamiz
		return fmt.Sprintf("len:%d:%d", len(sheet), len(external))
	}
	return fmt.Sprintf("%x", md5.Sum(payload))
}
