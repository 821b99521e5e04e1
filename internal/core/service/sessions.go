package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("wizard session not found")

// Session is one open wizard plus its customer search box.
type Session struct {
	ID     string
	Wizard *Wizard
	Search *CustomerSearch
}

// SessionFactory builds the parts of a session whose draft lives under draftKey.
type SessionFactory func(draftKey string) (*Wizard, *CustomerSearch)

// Sessions keeps one wizard per operator session. Each owns its own draft key.
type Sessions struct {
	factory   SessionFactory
	keyPrefix string

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessions(keyPrefix string, factory SessionFactory) *Sessions {
	if keyPrefix == "" {
		keyPrefix = DefaultDraftKey
	}
	return &Sessions{
		factory:   factory,
		keyPrefix: keyPrefix,
		sessions:  make(map[string]*Session),
	}
}

// Open returns the session for id, creating it when needed. Reopening a known
// id after a restart resumes its stored draft. An empty id starts a new session.
func (s *Sessions) Open(ctx context.Context, id string) (*Session, bool) {
	if id == "" {
		id = uuid.NewString()
	}

	if sess, err := s.Get(id); err == nil {
		return sess, false
	}

	// Start reads the store, so it runs without holding the registry lock.
	w, search := s.factory(s.keyPrefix + ":" + id)
	w.Start(ctx)
	sess := &Session{ID: id, Wizard: w, Search: search}

	s.mu.Lock()
	if existing, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		sess.teardown()
		return existing, false
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	log.Printf("wizard session %s opened at step %s", id, w.CurrentStep())
	return sess, true
}

func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Close tears the session down. Its stored draft is kept for a later resume.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.teardown()
	log.Printf("wizard session %s closed", id)
	return nil
}

func (s *Sessions) CloseAll() {
	s.mu.Lock()
	open := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range open {
		sess.teardown()
	}
}

// SaveAll persists every open draft, logging failures.
func (s *Sessions) SaveAll(ctx context.Context) {
	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		if err := sess.Wizard.SaveDraft(ctx); err != nil {
			log.Printf("wizard session %s: final save failed: %v", sess.ID, err)
		}
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (sess *Session) teardown() {
	sess.Wizard.Close()
	if sess.Search != nil {
		sess.Search.Close()
	}
}
