package usecase

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/inventory"
)

// Guruh nomlari
const (
	GroupToday     = "Today"
	GroupYesterday = "Yesterday"
	GroupOlder     = "Older"
)

// NotificationInput bildirishnomalarni hosil qilish uchun kirish
type NotificationInput struct {
	Report            entity.ReconciliationReport
	Products          []entity.Product
	LowStockThreshold int
	Now               time.Time
}

// BuildNotifications sinxronizatsiya natijasidan bildirishnomalar hosil qiladi.
// Tartib: mismatch lar, low stock, sheet-only xulosa.
func BuildNotifications(in NotificationInput) []entity.Notification {
	out := make([]entity.Notification, 0)

	for i, r := range in.Report.Mismatches {
		if i == constants.MaxMismatchNotifications {
			break
		}
		ext := 0
		if r.ExternalQuantity != nil {
			ext = *r.ExternalQuantity
		}
		out = append(out, newNotification(entity.NotificationQtyMismatch, "Quantity Mismatch",
			fmt.Sprintf("%s - Sheet %d, Store %d", displayName(r.SheetProduct), r.SheetQuantity, ext),
			map[string]string{
				"sku":              r.SKU,
				"sheetQuantity":    strconv.Itoa(r.SheetQuantity),
				"externalQuantity": strconv.Itoa(ext),
				"difference":       strconv.Itoa(r.Difference()),
			}, in.Now))
	}

	if in.LowStockThreshold > 0 {
		seen := make(map[string]bool)
		for _, p := range in.Products {
			if p.SKU == "" || seen[p.SKU] {
				continue
			}
			seen[p.SKU] = true
			qty := inventory.ParseQuantity(p.Quantity)
			if qty > in.LowStockThreshold {
				continue
			}
			out = append(out, newNotification(entity.NotificationLowStock, "Low Stock Alert",
				fmt.Sprintf("%s - Only %d left", displayName(p), qty),
				map[string]string{
					"sku":         p.SKU,
					"productName": p.ProductName,
					"quantity":    strconv.Itoa(qty),
				}, in.Now))
		}
	}

	if n := len(in.Report.SheetOnly); n > 0 {
		out = append(out, newNotification(entity.NotificationSheetOnly, "Not In Store",
			fmt.Sprintf("%d products are in the sheet but not in the store", n),
			map[string]string{"count": strconv.Itoa(n)}, in.Now))
	}
	return out
}

// SyncFailedNotification sinxronizatsiya xatosi haqida bildirishnoma
func SyncFailedNotification(err error, source string, now time.Time) entity.Notification {
	return newNotification(entity.NotificationSyncFailed, "Sync Failed", err.Error(),
		map[string]string{"source": source}, now)
}

// GroupByDay bildirishnomalarni kun bo'yicha guruhlaydi: Today, Yesterday, Older.
// Bo'sh guruhlar qaytarilmaydi; guruh ichida eng yangisi birinchi.
func GroupByDay(notifications []entity.Notification, now time.Time) []entity.NotificationGroup {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	buckets := map[string][]entity.Notification{}
	for _, n := range notifications {
		ts := n.Timestamp.In(now.Location())
		switch {
		case !ts.Before(today):
			buckets[GroupToday] = append(buckets[GroupToday], n)
		case !ts.Before(yesterday):
			buckets[GroupYesterday] = append(buckets[GroupYesterday], n)
		default:
			buckets[GroupOlder] = append(buckets[GroupOlder], n)
		}
	}

	groups := make([]entity.NotificationGroup, 0, 3)
	for _, label := range []string{GroupToday, GroupYesterday, GroupOlder} {
		items := buckets[label]
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp.After(items[j].Timestamp) })
		groups = append(groups, entity.NotificationGroup{Label: label, Notifications: items})
	}
	return groups
}

func newNotification(typ entity.NotificationType, title, body string, data map[string]string, at time.Time) entity.Notification {
	return entity.Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Title:     title,
		Body:      body,
		Data:      data,
		Timestamp: at,
	}
}

func displayName(p entity.Product) string {
	if p.ProductName != "" {
		return p.ProductName
	}
	return p.SKU
}
