package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/expand"
	"github.com/ritzau/mindmap/pkg/layout"
	"github.com/ritzau/mindmap/pkg/logging"
	"github.com/ritzau/mindmap/pkg/pubsub"
)

var (
	// ErrNotFound is returned for unknown session IDs
	ErrNotFound = errors.New("session not found")

	// ErrUnknownNode is returned when a node ID is not part of the dataset
	ErrUnknownNode = errors.New("node not in dataset")
)

// Manager owns every live session and the dataset they expand from
type Manager struct {
	publisher pubsub.Publisher

	mu       sync.RWMutex
	sessions map[string]*Session
	ds       *dataset.Dataset
	ctrl     *expand.Controller
}

// NewManager creates a manager serving ds with the given layout
func NewManager(ds *dataset.Dataset, cfg layout.Config, pub pubsub.Publisher) *Manager {
	return &Manager{
		publisher: pub,
		sessions:  make(map[string]*Session),
		ds:        ds,
		ctrl:      expand.NewController(cfg),
	}
}

// Dataset returns the dataset new sessions start from
func (m *Manager) Dataset() *dataset.Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ds
}

// Layout returns the active layout configuration
func (m *Manager) Layout() layout.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ctrl.Layout()
}

// Create starts a new session showing the collapsed root
func (m *Manager) Create(ctx context.Context) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	s := newSession(id, m.ds, m.ctrl, m.publisher)
	m.sessions[id] = s

	logging.InfoContext(logging.WithSessionID(ctx, id), "session created", "dataset", m.ds.Name, "sessions", len(m.sessions))
	return s
}

// Get looks up a session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete ends a session and its event stream.
// Events the session would publish afterwards are discarded.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.sessions, id)
	remaining := len(m.sessions)
	s.close()
	if m.publisher != nil {
		m.publisher.DropTopic(pubsub.SessionTopic(id))
	}
	m.mu.Unlock()

	logging.InfoContext(logging.WithSessionID(ctx, id), "session deleted", "sessions", remaining)
	return nil
}

// Subscribe opens the event stream of a live session.
// It is atomic with Delete: a stream is never opened on a deleted session.
func (m *Manager) Subscribe(ctx context.Context, id string) (pubsub.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.sessions[id]; !ok {
		return nil, ErrNotFound
	}
	if m.publisher == nil {
		return nil, errors.New("session events are not published")
	}
	return m.publisher.Subscribe(ctx, pubsub.SessionTopic(id))
}

// List returns the IDs of live sessions in sorted order
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reload switches to a new dataset and resets every session to its root
func (m *Manager) Reload(ctx context.Context, ds *dataset.Dataset) {
	m.mu.Lock()
	m.ds = ds
	ctrl := m.ctrl
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Reset(ctx, ds, ctrl)
	}
	logging.InfoContext(ctx, "dataset reloaded", "dataset", ds.Name, "sessions", len(sessions))
}
