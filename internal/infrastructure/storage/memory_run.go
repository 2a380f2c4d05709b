package storage

import (
	"context"
	"sync"

	"github.com/yourusername/shelfsync/internal/domain/entity"
	"github.com/yourusername/shelfsync/internal/domain/repository"
)

const memoryRunHistory = 100

type memoryRunRepository struct {
	mu   sync.RWMutex
	runs []entity.SyncRun // eng yangisi oxirida
}

// NewMemoryRunRepository Postgres sozlanmaganda ishlatiladigan sinxronizatsiya tarixi
func NewMemoryRunRepository() repository.RunRepository {
	return &memoryRunRepository{}
}

// Save yozuvni qo'shadi yoki shu ID bilan yangilaydi
func (m *memoryRunRepository) Save(ctx context.Context, run entity.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.runs {
		if m.runs[i].ID == run.ID {
			m.runs[i] = run
			return nil
		}
	}
	m.runs = append(m.runs, run)
	if len(m.runs) > memoryRunHistory {
		m.runs = m.runs[len(m.runs)-memoryRunHistory:]
	}
	return nil
}

// ListRecent oxirgi yozuvlar, eng yangisi birinchi
func (m *memoryRunRepository) ListRecent(ctx context.Context, limit int) ([]entity.SyncRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]entity.SyncRun, 0, n)
	for i := len(m.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}
