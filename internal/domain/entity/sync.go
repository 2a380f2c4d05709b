package entity

import "time"

// AreaStatus holat bo'limining yuklanish/xato holati
type AreaStatus struct {
	Loading  bool      `json:"loading"`
	Error    string    `json:"error,omitempty"`
	LastSync time.Time `json:"last_sync"`
}

// Snapshot ilova holatining butun nusxasi. Massivlar har sinxronizatsiyada to'liq almashtiriladi,
// joyida o'zgartirilmaydi.
type Snapshot struct {
	Products  []Product         `json:"products"`
	Locations []Location        `json:"locations"`
	Shelves   []Shelf           `json:"shelves"`
	External  []ExternalProduct `json:"external"`
	Matches   []MatchRecord     `json:"matches"`

	Inventory AreaStatus `json:"inventory"`
	Catalog   AreaStatus `json:"catalog"`
}

// SyncRun bitta sinxronizatsiya yozuvi
type SyncRun struct {
	ID             string    `json:"id" db:"id"`
	StartedAt      time.Time `json:"started_at" db:"started_at"`
	FinishedAt     time.Time `json:"finished_at" db:"finished_at"`
	Source         string    `json:"source" db:"source"`
	Products       int       `json:"products" db:"products"`
	Locations      int       `json:"locations" db:"locations"`
	Shelves        int       `json:"shelves" db:"shelves"`
	External       int       `json:"external" db:"external"`
	PerfectMatches int       `json:"perfect_matches" db:"perfect_matches"`
	Mismatches     int       `json:"mismatches" db:"mismatches"`
	SheetOnly      int       `json:"sheet_only" db:"sheet_only"`
	ExternalOnly   int       `json:"external_only" db:"external_only"`
	SerialFallback bool      `json:"serial_fallback" db:"serial_fallback"`
	Summary        string    `json:"summary,omitempty" db:"summary"`
	Error          string    `json:"error,omitempty" db:"error"`
}

// Duration sinxronizatsiya davomiyligi
func (r SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
