package service

import (
	"path/filepath"
	"sync"
	"time"

	"pdf-webp-converter/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// SessionManager owns every live conversion session. One session holds one
// uploaded document and its result store; uploading again creates a fresh
// session, and clearing a session releases its spooled files synchronously.
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*domain.Session
	spoolRoot string
	largeAt   int64
	logger    domain.Logger
}

// NewSessionManager creates a new session manager
func NewSessionManager(cfg domain.Config, logger domain.Logger) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*domain.Session),
		spoolRoot: cfg.GetSpoolPath(),
		largeAt:   cfg.GetLargeFileThreshold(),
		logger:    logger,
	}
}

// Create builds a session around an uploaded document. Documents at or
// above the large-file threshold get a disk-spooled result store and are
// later rendered one page at a time.
func (m *SessionManager) Create(documentName string, document []byte) (*domain.Session, error) {
	if len(document) == 0 {
		return nil, domain.ErrNoDocument
	}
	if documentName == "" {
		documentName = "document.pdf"
	}

	id := uuid.New().String()
	size := int64(len(document))
	large := size >= m.largeAt

	var store *ResultStore
	if large {
		store = NewSpooledResultStore(filepath.Join(m.spoolRoot, "pdf-webp-"+id))
	} else {
		store = NewResultStore()
	}

	session := &domain.Session{
		ID:           id,
		DocumentName: documentName,
		Document:     document,
		FileSize:     size,
		LargeFile:    large,
		Results:      store,
		State:        domain.StateIdle,
		CreatedAt:    time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	m.logger.Info("session created",
		"session_id", id,
		"document", documentName,
		"file_size", humanize.Bytes(uint64(size)),
		"large_file", large)
	return session, nil
}

// Get returns the session with the given id.
func (m *SessionManager) Get(id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Clear removes a session and releases its result store, including any
// spooled files, before returning.
func (m *SessionManager) Clear(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := session.Results.Clear(); err != nil {
		m.logger.Error("failed to release session results", err, "session_id", id)
		return err
	}
	m.logger.Info("session cleared", "session_id", id)
	return nil
}

// BeginRun marks a session as converting, rejecting overlapping runs.
func (m *SessionManager) BeginRun(id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Converting {
		return nil, domain.ErrConversionInProgress
	}
	session.Converting = true
	return session, nil
}

// EndRun releases the converting guard set by BeginRun.
func (m *SessionManager) EndRun(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[id]; ok {
		session.Converting = false
	}
}
