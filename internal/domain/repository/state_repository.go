package repository

import (
	"context"
	"time"

	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// Area holat bo'limi
type Area string

const (
	AreaInventory Area = "inventory"
	AreaCatalog   Area = "catalog"
)

// StateRepository ilova holati. Obunachilar har o'zgarishda snapshot nusxasini oladi.
type StateRepository interface {
	Snapshot(ctx context.Context) (entity.Snapshot, error)
	SetInventory(ctx context.Context, products []entity.Product, locations []entity.Location, shelves []entity.Shelf, at time.Time) error
	SetCatalog(ctx context.Context, external []entity.ExternalProduct, at time.Time) error
	SetMatches(ctx context.Context, records []entity.MatchRecord) error
	SetLoading(ctx context.Context, area Area, loading bool) error
	SetError(ctx context.Context, area Area, err error) error

	// Subscribe obunachini qo'shadi va obunani bekor qiluvchi funksiyani qaytaradi
	Subscribe(listener func(entity.Snapshot)) (unsubscribe func())
}

// RunRepository sinxronizatsiya tarixi
type RunRepository interface {
	Save(ctx context.Context, run entity.SyncRun) error
	ListRecent(ctx context.Context, limit int) ([]entity.SyncRun, error)
}

// NotificationRepository bildirishnomalar va o'qilganlik holati
type NotificationRepository interface {
	SaveMany(ctx context.Context, notifications []entity.Notification) error
	List(ctx context.Context, limit int) ([]entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
