package inventory

import "strings"

// Field mahsulot/lokatsiya maydonining kanonik nomi
type Field string

const (
	FieldSKU         Field = "sku"
	FieldProductName Field = "product_name"
	FieldQuantity    Field = "quantity"
	FieldCategory    Field = "category"
	FieldDescription Field = "description"
	FieldBranch      Field = "branch"
	FieldShelf       Field = "shelf"
	FieldRow         Field = "row"
	FieldColumn      Field = "column"
	FieldBox         Field = "box"
)

type fieldSynonyms struct {
	field    Field
	synonyms []string
}

var skuSynonyms = []string{"sku", "item_code", "product_code", "item code", "product code", "part_number", "part number"}

// Faqat SKU turidagi sarlavha bo'lmaganda qaraladi.
var serialSynonyms = []string{"s/n", "sn", "serial", "no", "number", "#", "index"}

// E'lon tartibi bog'lash tartibi: oldingi sinonim ustun.
var columnSynonyms = []fieldSynonyms{
	{FieldProductName, []string{"product_name", "item", "name", "product", "item_name", "product name", "item name"}},
	{FieldQuantity, []string{"quantity", "qty", "stock", "amount", "count", "inv", "inventory"}},
	{FieldCategory, []string{"category", "type", "group", "class", "classification"}},
	{FieldDescription, []string{"description", "desc", "details", "notes", "info"}},
	{FieldBranch, []string{"branch", "location", "store", "warehouse", "site"}},
	{FieldShelf, []string{"shelf", "rack", "shelves", "shelf_number", "shelf number"}},
	{FieldRow, []string{"row", "level", "tier"}},
	{FieldColumn, []string{"column", "col", "position", "slot"}},
	{FieldBox, []string{"box", "bin", "container", "unit"}},
}

// HeaderMapping kanonik maydonlarni asl sarlavha matnlariga bog'laydi
type HeaderMapping struct {
	Fields map[Field]string `json:"fields"`

	// SerialFallback identifikator seriya raqami ustuniga bog'langanda o'rnatiladi
	SerialFallback bool `json:"serial_fallback"`
}

// Header f ga bog'langan asl sarlavhani qaytaradi
func (m HeaderMapping) Header(f Field) (string, bool) {
	h, ok := m.Fields[f]
	return h, ok
}

// NormalizeHeader h ni kichik harfga o'tkazadi, bo'shliqlarini kesadi va harf-raqam
// bo'lmagan belgilar ketma-ketligini bitta pastki chiziqqa aylantiradi.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	b.Grow(len(h))
	pendingSep := false
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteByte(c)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

type normalizedHeader struct {
	original   string
	normalized string
	trimmed    string
}

// MapHeaders jadval sarlavhalarini sinonim jadvallari orqali kanonik maydonlarga
// bog'laydi. Xato qaytarmaydi: noma'lum ustunlar e'tiborsiz qoladi, topilmagan
// maydonlar bog'lanmaydi.
func MapHeaders(raw []string) HeaderMapping {
	headers := make([]normalizedHeader, len(raw))
	for i, h := range raw {
		headers[i] = normalizedHeader{
			original:   h,
			normalized: NormalizeHeader(h),
			trimmed:    strings.TrimSpace(h),
		}
	}

	mapping := HeaderMapping{Fields: make(map[Field]string)}

	if h, ok := findHeader(headers, skuSynonyms); ok {
		mapping.Fields[FieldSKU] = h
	}

	for _, fs := range columnSynonyms {
		if h, ok := findHeader(headers, fs.synonyms); ok {
			mapping.Fields[fs.field] = h
		}
	}

	if _, ok := mapping.Fields[FieldSKU]; !ok {
		if h, ok := findHeader(headers, serialSynonyms); ok {
			mapping.Fields[FieldSKU] = h
			mapping.SerialFallback = true
		}
	}

	return mapping
}

func findHeader(headers []normalizedHeader, synonyms []string) (string, bool) {
	for _, synonym := range synonyms {
		want := NormalizeHeader(synonym)
		for _, h := range headers {
			if want == "" {
				// "#" normallashganda bo'sh bo'ladi, shuning uchun aynan solishtiriladi
				if h.trimmed != "" && h.trimmed == strings.TrimSpace(synonym) {
					return h.original, true
				}
				continue
			}
			if h.normalized == want {
				return h.original, true
			}
		}
	}
	return "", false
}
