package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/domain/repository"
)

type memoryStateRepository struct {
	mu        sync.RWMutex
	snap      entity.Snapshot
	listeners map[int]func(entity.Snapshot)
	nextID    int
}

// NewMemoryStateRepository in-memory holat ombori yaratish
func NewMemoryStateRepository() repository.StateRepository {
	return &memoryStateRepository{
		snap: entity.Snapshot{
			Products:  []entity.Product{},
			Locations: []entity.Location{},
			Shelves:   []entity.Shelf{},
			External:  []entity.ExternalProduct{},
			Matches:   []entity.MatchRecord{},
		},
		listeners: make(map[int]func(entity.Snapshot)),
	}
}

// Snapshot joriy holat nusxasini qaytaradi
func (m *memoryStateRepository) Snapshot(ctx context.Context) (entity.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSnapshot(m.snap), nil
}

// SetInventory jadvaldan olingan ma'lumotlarni to'liq almashtiradi
func (m *memoryStateRepository) SetInventory(ctx context.Context, products []entity.Product, locations []entity.Location, shelves []entity.Shelf, at time.Time) error {
	m.update(func(s *entity.Snapshot) {
		s.Products = append([]entity.Product{}, products...)
		s.Locations = append([]entity.Location{}, locations...)
		s.Shelves = append([]entity.Shelf{}, shelves...)
		s.Inventory.LastSync = at
		s.Inventory.Error = ""
	})
	return nil
}

// SetCatalog tashqi katalogni to'liq almashtiradi
func (m *memoryStateRepository) SetCatalog(ctx context.Context, external []entity.ExternalProduct, at time.Time) error {
	m.update(func(s *entity.Snapshot) {
		s.External = append([]entity.ExternalProduct{}, external...)
		s.Catalog.LastSync = at
		s.Catalog.Error = ""
	})
	return nil
}

// SetMatches solishtirish natijalarini almashtiradi
func (m *memoryStateRepository) SetMatches(ctx context.Context, records []entity.MatchRecord) error {
	m.update(func(s *entity.Snapshot) {
		s.Matches = append([]entity.MatchRecord{}, records...)
	})
	return nil
}

// SetLoading bo'lim yuklanish holatini o'rnatadi
func (m *memoryStateRepository) SetLoading(ctx context.Context, area repository.Area, loading bool) error {
	m.update(func(s *entity.Snapshot) {
		if st := areaStatus(s, area); st != nil {
			st.Loading = loading
		}
	})
	return nil
}

// SetError bo'lim xatosini o'rnatadi; nil xatoni tozalaydi
func (m *memoryStateRepository) SetError(ctx context.Context, area repository.Area, err error) error {
	m.update(func(s *entity.Snapshot) {
		st := areaStatus(s, area)
		if st == nil {
			return
		}
		st.Error = ""
		if err != nil {
			st.Error = err.Error()
		}
	})
	return nil
}

// Subscribe obunachini qo'shadi
func (m *memoryStateRepository) Subscribe(listener func(entity.Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = listener
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// update o'zgarishni qo'llaydi va obunachilarni lock dan tashqarida chaqiradi
func (m *memoryStateRepository) update(mutate func(*entity.Snapshot)) {
	m.mu.Lock()
	mutate(&m.snap)
	snap := cloneSnapshot(m.snap)

	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]func(entity.Snapshot), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, m.listeners[id])
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(cloneSnapshot(snap))
	}
}

func areaStatus(s *entity.Snapshot, area repository.Area) *entity.AreaStatus {
	switch area {
	case repository.AreaInventory:
		return &s.Inventory
	case repository.AreaCatalog:
		return &s.Catalog
	default:
		return nil
	}
}

func cloneSnapshot(s entity.Snapshot) entity.Snapshot {
	out := s
	out.Products = append([]entity.Product{}, s.Products...)
	out.Locations = append([]entity.Location{}, s.Locations...)
	out.Shelves = append([]entity.Shelf{}, s.Shelves...)
	out.External = append([]entity.ExternalProduct{}, s.External...)
	out.Matches = append([]entity.MatchRecord{}, s.Matches...)
	return out
}
