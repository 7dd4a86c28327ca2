// File: internal/services/chat/manager.go
package chat

import (
	"sync"

	"github.com/iyunix/go-agentdesk/internal/services/ai"
)

// Manager hands out one Session per username.
type Manager struct {
	config    *Config
	store     ConversationStore
	responder ai.Responder
	logger    Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(config *Config, store ConversationStore, responder ai.Responder, logger Logger) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{
		config:    config,
		store:     store,
		responder: responder,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Session returns the user's session, creating it on first use.
func (m *Manager) Session(username string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[username]; ok {
		return s
	}
	s := NewSession(username, m.config, m.store, m.responder, m.logger)
	m.sessions[username] = s
	return s
}
