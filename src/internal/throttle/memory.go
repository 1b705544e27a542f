package throttle

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many failures pass between full sweeps of expired keys.
const sweepEvery = 256

// Memory keeps failure timestamps in process memory.
type Memory struct {
	attempts map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
	fails    int
	now      func() time.Time
}

func NewMemory(settings Settings) *Memory {
	return &Memory{
		attempts: make(map[string][]time.Time),
		limit:    settings.Limit,
		window:   settings.Window,
		now:      time.Now,
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Blocked(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.recent(key)) >= m.limit, nil
}

func (m *Memory) Fail(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts[key] = append(m.recent(key), m.now())

	m.fails++
	if m.fails%sweepEvery == 0 {
		m.sweep()
	}
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.attempts, key)
	return nil
}

// recent drops expired attempts for key. Caller holds mu.
func (m *Memory) recent(key string) []time.Time {
	cutoff := m.now().Add(-m.window)

	var recent []time.Time
	for _, t := range m.attempts[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) == 0 {
		delete(m.attempts, key)
	} else {
		m.attempts[key] = recent
	}
	return recent
}

// sweep drops every key whose attempts have all expired. Caller holds mu.
func (m *Memory) sweep() {
	for key := range m.attempts {
		m.recent(key)
	}
}
