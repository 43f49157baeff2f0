package store

import (
	"errors"
	"sync"
	"time"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
)

// ErrSessionExists is returned when an identity already holds a live
// exam session.
var ErrSessionExists = errors.New("session already exists for identity")

// SessionStore tracks live exam sessions, keyed by owner username. The
// at-most-one-session-per-identity invariant is enforced with
// check-then-insert under the store lock.
//
// Like TokenStore, state lives in process memory only.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.ExamSession
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]model.ExamSession)}
}

// Create inserts a session for its owner. Fails with ErrSessionExists if
// the owner already has one, leaving the existing session untouched.
func (s *SessionStore) Create(sess model.ExamSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.Owner]; ok {
		return ErrSessionExists
	}
	s.sessions[sess.Owner] = sess
	return nil
}

// Get returns a copy of the owner's live session, if any.
func (s *SessionStore) Get(owner string) (model.ExamSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	return sess, ok
}

// SetActiveTask moves the owner's task cursor. Returns false when no
// session exists or the index is out of range.
func (s *SessionStore) SetActiveTask(owner string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	if !ok || index < 0 || index >= len(sess.TaskIDs) {
		return false
	}
	sess.ActiveTaskIndex = index
	s.sessions[owner] = sess
	return true
}

// StoreProgress writes code into the slot for the owner's active task.
func (s *SessionStore) StoreProgress(owner, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	if !ok {
		return false
	}
	sess.Solutions[sess.ActiveTaskIndex] = code
	s.sessions[owner] = sess
	return true
}

// RecordResult writes a graded submission into the given slot. The index
// is captured by the caller before the grading round-trip, so a
// concurrent task switch cannot misfile the result. Returns false when
// the session vanished (finished or swept) in the meantime.
func (s *SessionStore) RecordResult(owner string, index int, code string, success bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	if !ok || index < 0 || index >= len(sess.TaskIDs) {
		return false
	}
	sess.Solutions[index] = code
	sess.Successes[index] = success
	s.sessions[owner] = sess
	return true
}

// Take removes and returns the owner's session atomically. A second Take
// for the same owner reports false, which finish maps to NotFound.
func (s *SessionStore) Take(owner string) (model.ExamSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	if !ok {
		return model.ExamSession{}, false
	}
	delete(s.sessions, owner)
	return sess, true
}

// SweepExpired deletes every session past its expiry at now, re-checking
// expiry per entry under the lock so the sweep cannot race a concurrent
// finish or submit. The evicted sessions are returned for logging; no
// result is produced for them.
func (s *SessionStore) SweepExpired(now time.Time) []model.ExamSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []model.ExamSession
	for owner, sess := range s.sessions {
		if sess.ExpiryTime.Before(now) {
			delete(s.sessions, owner)
			evicted = append(evicted, sess)
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
