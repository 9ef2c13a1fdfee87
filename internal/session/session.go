// Package session reads the logged-in user's identity from a key-value store.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gitlab.com/yelinaung/billed/internal/models"
)

// UserKey is the key holding the JSON encoded user.
const UserKey = "user"

// ErrNoUser is returned when the store holds no user.
var ErrNoUser = errors.New("no user in session")

// Store is a key-value persistence exposing string items.
type Store interface {
	GetItem(key string) (string, bool)
}

// Session is the identity of the logged-in user.
type Session struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// IsEmployee reports whether the session belongs to an employee.
func (s Session) IsEmployee() bool {
	return strings.EqualFold(s.Type, models.UserTypeEmployee)
}

// Current decodes the user stored under UserKey.
func Current(store Store) (Session, error) {
	raw, ok := store.GetItem(UserKey)
	if !ok || strings.TrimSpace(raw) == "" || raw == "null" {
		return Session{}, ErrNoUser
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("failed to decode session user: %w", err)
	}
	s.Email = strings.TrimSpace(s.Email)
	return s, nil
}

// Save encodes s under UserKey.
func Save(store *MemoryStore, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	store.SetItem(UserKey, string(raw))
	return nil
}

// MemoryStore is an in-memory Store safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// GetItem returns the value stored under key.
func (m *MemoryStore) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

// SetItem stores value under key.
func (m *MemoryStore) SetItem(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

// RemoveItem deletes key.
func (m *MemoryStore) RemoveItem(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Clear deletes every item.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.items)
}
