package inbox

import (
	"context"
	"sync"
)

// Memory is a bounded in-process Deduper. Once full it forgets the oldest
// IDs first.
type Memory struct {
	mu    sync.Mutex
	limit int
	order []string
	seen  map[string]struct{}
}

func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 10000
	}
	return &Memory{limit: limit, seen: make(map[string]struct{}, limit)}
}

func (m *Memory) Seen(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[eventID]; ok {
		return true, nil
	}
	if len(m.order) >= m.limit {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.seen, oldest)
	}
	m.order = append(m.order, eventID)
	m.seen[eventID] = struct{}{}
	return false, nil
}

var _ Deduper = (*Memory)(nil)
