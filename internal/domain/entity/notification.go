package entity

import "time"

// NotificationType bildirishnoma turi
type NotificationType string

const (
	NotificationQtyMismatch NotificationType = "qty_mismatch"
	NotificationLowStock    NotificationType = "low_stock"
	NotificationSheetOnly   NotificationType = "sheet_only"
	NotificationSyncFailed  NotificationType = "sync_failed"
	NotificationSyncSummary NotificationType = "sync_summary"
)

// Notification sinxronizatsiyadan keyin hosil bo'ladigan bildirishnoma
type Notification struct {
	ID        string            `json:"id"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
}

// NotificationGroup sana bo'yicha guruh (Today / Yesterday / Older)
type NotificationGroup struct {
	Label         string         `json:"label"`
	Notifications []Notification `json:"notifications"`
}
