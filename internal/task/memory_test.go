// AngelaMos | 2026
// memory_test.go

package task

import (
	"context"
	"sort"
	"sync"

	"github.com/pierkoo/flasktaskr/internal/core"
)

// memoryRepo is a Repository over a map. WithTx snapshots the rows and
// restores them when fn fails, mirroring a rollback.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Task
	owners map[int64]string
	writes int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		rows:   make(map[int64]Task),
		owners: make(map[int64]string),
	}
}

func (m *memoryRepo) Create(_ context.Context, t *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.rows[t.ID] = *t
	m.writes++
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &t, nil
}

func (m *memoryRepo) GetByIDForUpdate(ctx context.Context, id int64) (*Task, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryRepo) ListByStatus(_ context.Context, status Status) ([]Listed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Listed
	for _, t := range m.rows {
		if t.Status == status {
			out = append(out, Listed{Task: t, OwnerName: m.owners[t.UserID]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return core.ErrNotFound
	}
	t.Status = status
	m.rows[id] = t
	m.writes++
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.rows, id)
	m.writes++
	return nil
}

func (m *memoryRepo) CountByStatus(_ context.Context) (Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c Counts
	for _, t := range m.rows {
		if t.Status == StatusOpen {
			c.Open++
		} else {
			c.Closed++
		}
	}
	return c, nil
}

func (m *memoryRepo) WithTx(_ context.Context, fn func(Repository) error) error {
	m.mu.Lock()
	snapshot := make(map[int64]Task, len(m.rows))
	for k, v := range m.rows {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.rows = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memoryRepo) status(id int64) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	return t.Status, ok
}
