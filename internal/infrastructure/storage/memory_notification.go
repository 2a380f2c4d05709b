package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/domain/repository"
)

type memoryNotificationRepository struct {
	mu      sync.RWMutex
	items   []entity.Notification // eng yangisi birinchi
	maxSize int
}

// NewMemoryNotificationRepository in-memory bildirishnomalar ombori
func NewMemoryNotificationRepository(maxSize int) repository.NotificationRepository {
	if maxSize <= 0 {
		maxSize = constants.MaxNotifications
	}
	return &memoryNotificationRepository{
		items:   []entity.Notification{},
		maxSize: maxSize,
	}
}

// SaveMany yangi bildirishnomalarni qo'shadi; eng eskilari chegaradan oshsa tashlanadi
func (m *memoryNotificationRepository) SaveMany(ctx context.Context, notifications []entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	combined := make([]entity.Notification, 0, len(notifications)+len(m.items))
	combined = append(combined, notifications...)
	combined = append(combined, m.items...)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Timestamp.After(combined[j].Timestamp)
	})
	if len(combined) > m.maxSize {
		combined = combined[:m.maxSize]
	}
	m.items = combined
	return nil
}

// List eng yangilaridan boshlab qaytaradi; limit <= 0 bo'lsa hammasi
func (m *memoryNotificationRepository) List(ctx context.Context, limit int) ([]entity.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]entity.Notification, n)
	copy(out, m.items[:n])
	return out, nil
}

// MarkRead bitta bildirishnomani o'qilgan deb belgilaydi
func (m *memoryNotificationRepository) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", entity.ErrNotificationNotFound, id)
}

// MarkAllRead hammasini o'qilgan deb belgilaydi
func (m *memoryNotificationRepository) MarkAllRead(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		m.items[i].Read = true
	}
	return nil
}

// UnreadCount o'qilmaganlar soni
func (m *memoryNotificationRepository) UnreadCount(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, n := range m.items {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// Delete bitta bildirishnomani o'chiradi
func (m *memoryNotificationRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", entity.ErrNotificationNotFound, id)
}

// Clear hammasini o'chiradi
func (m *memoryNotificationRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = []entity.Notification{}
	return nil
}
