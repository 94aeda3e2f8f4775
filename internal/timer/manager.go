package timer

import "sync"

// Manager holds one engine per user for the lifetime of the process, so a
// countdown keeps running no matter which view the client navigates to.
// Engines are created lazily with the focus defaults.
type Manager struct {
	mu         sync.Mutex
	engines    map[string]*Engine
	sounderFor func(userID string) Sounder
}

// NewManager builds a manager. sounderFor supplies the per-user alarm
// output; it may be nil, in which case alarms track state silently.
func NewManager(sounderFor func(userID string) Sounder) *Manager {
	return &Manager{
		engines:    make(map[string]*Engine),
		sounderFor: sounderFor,
	}
}

func (m *Manager) Engine(userID string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if engine, ok := m.engines[userID]; ok {
		return engine
	}

	var sounder Sounder
	if m.sounderFor != nil {
		sounder = m.sounderFor(userID)
	}
	engine := NewEngine(sounder)
	m.engines[userID] = engine
	return engine
}

// Shutdown stops every engine's ticker. Engines stay registered; the
// process is exiting anyway.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, engine := range m.engines {
		engine.Stop()
	}
}
