package entity

// Product bitta jadval qatoridan olingan mahsulot. Quantity matn ko'rinishida saqlanadi.
type Product struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Branch      string `json:"branch"`
	Shelf       string `json:"shelf"`
	Row         string `json:"row"`
	Column      string `json:"column"`
	Box         string `json:"box"`
}

// Location SKU ning javondagi joyi. Bitta SKU bir nechta joyda bo'lishi mumkin.
type Location struct {
	SKU    string `json:"sku"`
	Branch string `json:"branch"`
	Shelf  string `json:"shelf"`
	Row    string `json:"row"`
	Column string `json:"column"`
	Box    string `json:"box"`
}

// ProductLocation mahsulot kartasida ko'rsatiladigan joy.
type ProductLocation struct {
	Branch    string `json:"branch"`
	Shelf     string `json:"shelf"`
	Row       string `json:"row"`
	Column    string `json:"column"`
	Box       string `json:"box"`
	Position  string `json:"position"`
	ShelfName string `json:"shelf_name"`
	ShelfID   string `json:"shelf_id"`
}

// SheetData manbadan olingan xom qatorlar (birinchi qator sarlavha).
// LocationRows nil bo'lsa, alohida "Location" varag'i topilmagan.
type SheetData struct {
	Title        string     `json:"title"`
	ProductTab   string     `json:"product_tab"`
	LocationTab  string     `json:"location_tab,omitempty"`
	ProductRows  [][]string `json:"product_rows"`
	LocationRows [][]string `json:"location_rows,omitempty"`
}

// HasLocationTab alohida joylashuv varag'i bormi
func (d SheetData) HasLocationTab() bool {
	return d.LocationTab != ""
}
