package cache

import (
	"context"
	"sync"
	"time"

	"backoffice/internal/domain/reports"
)

type entry struct {
	dashboard *reports.Dashboard
	expires   time.Time
}

// Memory is an in-process reports.Cache for single-instance deployments.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ reports.Cache = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (m *Memory) GetDashboard(_ context.Context, key string) (*reports.Dashboard, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expires) {
		return nil, false, nil
	}
	return e.dashboard, true, nil
}

// SetDashboard stores d and drops expired entries. Keys are per day, so the
// map never holds more than a few.
func (m *Memory) SetDashboard(_ context.Context, key string, d *reports.Dashboard) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = entry{dashboard: d, expires: now.Add(m.ttl)}
	return nil
}
