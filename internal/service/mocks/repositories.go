package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/SergeiKhy/visit-tracker/internal/models"
	"github.com/SergeiKhy/visit-tracker/internal/repository"
)

// MockVisitRepository implements repository.VisitRepository for testing
type MockVisitRepository struct {
	mu     sync.RWMutex
	visits []models.Visit

	// FailWith, if set, is returned by every method to simulate a store failure
	FailWith error
}

func NewMockVisitRepository() *MockVisitRepository {
	return &MockVisitRepository{}
}

func (m *MockVisitRepository) Create(ctx context.Context, visit *models.Visit) error {
	if m.FailWith != nil {
		return m.FailWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.visits = append(m.visits, *visit)
	return nil
}

func (m *MockVisitRepository) ListByURL(ctx context.Context, url string, limit, offset int) ([]models.Visit, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.sorted(func(v *models.Visit) bool { return v.URL == url })
	return page(matched, limit, offset), nil
}

func (m *MockVisitRepository) LatestByURL(ctx context.Context, url string) (*models.Visit, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.sorted(func(v *models.Visit) bool { return v.URL == url })
	if len(matched) == 0 {
		return nil, repository.ErrVisitNotFound
	}

	latest := matched[0]
	return &latest, nil
}

func (m *MockVisitRepository) CountByURL(ctx context.Context, url string) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for i := range m.visits {
		if m.visits[i].URL == url {
			total++
		}
	}
	return total, nil
}

func (m *MockVisitRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Visit, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.sorted(func(*models.Visit) bool { return true })
	return page(all, limit, offset), nil
}

func (m *MockVisitRepository) CountAll(ctx context.Context) (int64, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.visits)), nil
}

func (m *MockVisitRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits = nil
	m.FailWith = nil
}

// sorted returns matching visits ordered the same way the SQL store orders them:
// datetime_visited DESC with created_at then id as tiebreakers
func (m *MockVisitRepository) sorted(match func(*models.Visit) bool) []models.Visit {
	var out []models.Visit
	for i := range m.visits {
		if match(&m.visits[i]) {
			out = append(out, m.visits[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DatetimeVisited.Equal(out[j].DatetimeVisited) {
			return out[i].DatetimeVisited.After(out[j].DatetimeVisited)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})

	return out
}

func page(visits []models.Visit, limit, offset int) []models.Visit {
	if offset >= len(visits) {
		return []models.Visit{}
	}
	end := offset + limit
	if end > len(visits) {
		end = len(visits)
	}
	return visits[offset:end]
}
