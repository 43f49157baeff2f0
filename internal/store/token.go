package store

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
)

// NewTokenString mints an opaque unguessable token.
func NewTokenString() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("store: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

type ownerMode struct {
	owner string
	mode  model.TaskMode
}

// TokenStore tracks live task tokens in process memory. Tokens are keyed
// by token string with a secondary (owner, mode) index so that issuing a
// new practice/testing token supersedes the previous one in O(1).
//
// State is deliberately unpersisted: a process restart invalidates all
// in-flight tokens.
type TokenStore struct {
	mu      sync.Mutex
	byToken map[string]model.TaskToken
	byOwner map[ownerMode]string
}

// NewTokenStore creates an empty TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byToken: make(map[string]model.TaskToken),
		byOwner: make(map[ownerMode]string),
	}
}

// Put stores a token, invalidating any existing token for the same
// (owner, mode) pair.
func (s *TokenStore) Put(t model.TaskToken) {
	key := ownerMode{t.Owner, t.Mode}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byOwner[key]; ok {
		delete(s.byToken, prev)
	}
	s.byToken[t.Token] = t
	s.byOwner[key] = t.Token
}

// Get returns a copy of the token, if present.
func (s *TokenStore) Get(token string) (model.TaskToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byToken[token]
	return t, ok
}

// GetByOwnerMode returns the live token for an (owner, mode) pair.
func (s *TokenStore) GetByOwnerMode(owner string, mode model.TaskMode) (model.TaskToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokenStr, ok := s.byOwner[ownerMode{owner, mode}]
	if !ok {
		return model.TaskToken{}, false
	}
	t, ok := s.byToken[tokenStr]
	return t, ok
}

// StoreProgress overwrites the token's saved code. Returns false if the
// token is no longer live.
func (s *TokenStore) StoreProgress(token, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byToken[token]
	if !ok {
		return false
	}
	t.SavedCode = code
	s.byToken[token] = t
	return true
}

// Delete removes a token and its owner index entry.
func (s *TokenStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(token)
}

func (s *TokenStore) deleteLocked(token string) {
	t, ok := s.byToken[token]
	if !ok {
		return
	}
	delete(s.byToken, token)

	key := ownerMode{t.Owner, t.Mode}
	if s.byOwner[key] == token {
		delete(s.byOwner, key)
	}
}

// SweepExpired deletes every token past its expiry at now, re-checking
// expiry per entry under the lock so the sweep cannot race a concurrent
// renewal. Returns the number of evicted tokens.
func (s *TokenStore) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for token, t := range s.byToken {
		if t.ExpiresAt.Before(now) {
			s.deleteLocked(token)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live tokens.
func (s *TokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byToken)
}
