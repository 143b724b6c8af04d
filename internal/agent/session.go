package agent

import "sync"

// SessionManager hands out one orchestrator per chat id, so each Telegram
// chat (or the single console session) keeps its own short-term history.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Orchestrator
	factory  func() *Orchestrator
}

func NewSessionManager(factory func() *Orchestrator) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Orchestrator),
		factory:  factory,
	}
}

// Session returns the orchestrator for chatID, creating it on first use.
func (m *SessionManager) Session(chatID string) *Orchestrator {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.sessions[chatID]
	if !ok {
		o = m.factory()
		m.sessions[chatID] = o
	}
	return o
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
