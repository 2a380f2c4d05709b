package entity

// Box javon katagi. Faqat SKU identifikatorlarini saqlaydi, miqdor Product da.
type Box struct {
	ID        string   `json:"id"`
	BoxNumber string   `json:"box_number"`
	Row       *int     `json:"row"`
	Column    string   `json:"column"`
	Position  string   `json:"position"`
	Products  []string `json:"products"`
}

// HasGridCell box qator/ustun koordinatasiga egami
func (b Box) HasGridCell() bool {
	return b.Row != nil && b.Column != ""
}

// Shelf filialdagi javon. MaxRow/MaxColumn kuzatilgan eng katta indekslar, sig'im emas.
type Shelf struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Branch      string `json:"branch"`
	ShelfNumber string `json:"shelf_number"`
	MaxRow      int    `json:"max_row"`
	MaxColumn   int    `json:"max_column"`
	Boxes       []Box  `json:"boxes"`
}

// UtilizationLevel javon to'lish darajasi
type UtilizationLevel string

const (
	UtilizationOK       UtilizationLevel = "ok"
	UtilizationWarning  UtilizationLevel = "warning"
	UtilizationCritical UtilizationLevel = "critical"
)

// ShelfStats javon kartasi statistikasi
type ShelfStats struct {
	TotalProducts int              `json:"total_products"`
	FilledBoxes   int              `json:"filled_boxes"`
	TotalBoxes    int              `json:"total_boxes"`
	TotalSlots    int              `json:"total_slots"`
	Utilization   float64          `json:"utilization"`
	Level         UtilizationLevel `json:"level"`
}

// BoxFill katak to'lganligi
type BoxFill string

const (
	BoxEmpty   BoxFill = "empty"
	BoxPartial BoxFill = "partial"
	BoxFilled  BoxFill = "filled"
)
