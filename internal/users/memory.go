package users

import (
	"context"
	"sort"
	"sync"

	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
)

// MemoryUserRepository is an in-memory UserRepository used for local
// development and unit tests. Records are copied in and out.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	store map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{store: make(map[string]models.User)}
}

func (m *MemoryUserRepository) Put(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[u.ID] = *u
	return nil
}

func (m *MemoryUserRepository) Get(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// UpdateRole sets the role field, creating a bare record when none exists
// (matching DynamoDB UpdateItem semantics).
func (m *MemoryUserRepository) UpdateRole(_ context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.store[id]
	u.ID = id
	u.Role = role
	m.store[id] = u
	return nil
}

// List returns records sorted by id.
func (m *MemoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.User, 0, len(m.store))
	for _, u := range m.store {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
