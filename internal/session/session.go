// Package session tracks retrieval sessions and their query history.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/debarghya18/localrag/internal/models"
	"github.com/google/uuid"
)

// QueryRecord is one history entry on a session.
type QueryRecord struct {
	Query            string    `json:"query"`
	ChunkIDs         []string  `json:"chunk_ids"`
	NoRelevantResult bool      `json:"no_relevant_result,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	ElapsedMillis    int64     `json:"elapsed_ms"`
}

// Session groups queries over a fixed document scope. An empty DocumentIDs
// slice means the session queries the whole index.
type Session struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	DocumentIDs []string      `json:"document_ids,omitempty"`
	History     []QueryRecord `json:"history,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Manager owns sessions. All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create starts a new session over the given document scope.
func (m *Manager) Create(title string, documentIDs []string) *Session {
	now := time.Now()
	s := &Session{
		ID:          uuid.New().String(),
		Title:       title,
		DocumentIDs: append([]string(nil), documentIDs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.Title == "" {
		s.Title = "Session " + now.Format("2006-01-02 15:04")
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns a copy of the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	return copySession(s), nil
}

// List returns all sessions, most recently updated first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, copySession(s))
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes a session. Deleting an unknown session returns ErrNotFound.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	delete(m.sessions, id)
	return nil
}

// AppendHistory records a completed query on the session.
func (m *Manager) AppendHistory(id string, record QueryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	record.ChunkIDs = append([]string(nil), record.ChunkIDs...)
	s.History = append(s.History, record)
	s.UpdatedAt = record.Timestamp
	return nil
}

// Scope returns the session's document scope, or nil for whole-index
// sessions.
func (m *Manager) Scope(id string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	if len(s.DocumentIDs) == 0 {
		return nil, nil
	}
	return append([]string(nil), s.DocumentIDs...), nil
}

func copySession(s *Session) *Session {
	out := *s
	out.DocumentIDs = append([]string(nil), s.DocumentIDs...)
	out.History = make([]QueryRecord, len(s.History))
	for i, r := range s.History {
		r.ChunkIDs = append([]string(nil), r.ChunkIDs...)
		out.History[i] = r
	}
	return &out
}
