package storage

import (
	"sync"
	"time"

	"eduviz-backend/internal/model"
)

// MemoryStorage 纯内存会话存储，进程退出或会话过期即销毁，不落盘
type MemoryStorage struct {
	sessions map[string]*model.Session
	mu       sync.RWMutex

	ttl      time.Duration
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewMemoryStorage(ttl, cleanupInterval time.Duration) *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
		interval: cleanupInterval,
		stopCh:   make(chan struct{}),
	}
}

func (m *MemoryStorage) Init() error {
	if m.ttl > 0 && m.interval > 0 {
		go m.cleanupLoop()
	}
	return nil
}

func (m *MemoryStorage) Close() error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	return nil
}

func (m *MemoryStorage) cleanupLoop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.stopCh:
			return
		}
	}
}

func (m *MemoryStorage) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline := time.Now().Add(-m.ttl)
	for id, session := range m.sessions {
		if session.UpdatedAt.Before(deadline) {
			delete(m.sessions, id)
		}
	}
}

func (m *MemoryStorage) CreateSession(session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = session
	return nil
}

func (m *MemoryStorage) GetSession(sessionID string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (m *MemoryStorage) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryStorage) BeginRequest(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}
	if session.InFlight {
		return ErrRequestInFlight
	}

	session.InFlight = true
	session.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStorage) EndRequest(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	session.InFlight = false
	session.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStorage) AppendHistory(sessionID string, entry *model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	// 头插保持最新在前，截断到上限
	session.History = append([]*model.HistoryEntry{entry}, session.History...)
	if len(session.History) > model.MaxHistoryEntries {
		session.History = session.History[:model.MaxHistoryEntries]
	}
	session.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStorage) ListHistory(sessionID string) ([]*model.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	entries := make([]*model.HistoryEntry, len(session.History))
	copy(entries, session.History)

	return entries, nil
}

func (m *MemoryStorage) GetHistoryEntry(sessionID, entryID string) (*model.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	for _, entry := range session.History {
		if entry.ID == entryID {
			return entry, nil
		}
	}

	return nil, ErrEntryNotFound
}
