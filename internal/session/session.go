// Package session holds the single current-login snapshot the storefront
// tracks. The snapshot has an explicit lifecycle: Start on login, Clear on
// logout, Refresh when a mutation touches the logged-in user.
package session

import (
	"strings"
	"sync"

	"github.com/socialboost/panel/internal/models"
)

// Manager owns one session at a time, process wide. Each login overwrites
// the previous snapshot wholesale.
type Manager struct {
	mu      sync.RWMutex
	current *models.User
}

func NewManager() *Manager {
	return &Manager{}
}

// Start records user as the current session, replacing any existing one.
func (m *Manager) Start(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := user
	m.current = &snapshot
}

// Clear drops the current session, if any.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// Current returns a copy of the session snapshot, or false when nobody is
// logged in.
func (m *Manager) Current() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.User{}, false
	}
	return *m.current, true
}

// Refresh replaces the snapshot when the given user is the session user
// (matched case-insensitively on email). Mutations that change the email
// itself pass the pre-rename address as matchEmail.
func (m *Manager) Refresh(matchEmail string, user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	if !strings.EqualFold(m.current.Email, matchEmail) {
		return
	}
	snapshot := user
	m.current = &snapshot
}
