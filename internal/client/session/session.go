// Package session holds the client's in-memory session and its durable
// on-disk record.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rainflow/accounts/internal/models"
)

// DefaultFile is the durable session record written next to the binary,
// mirroring where the client keeps its local state.
const DefaultFile = "session.json"

// Session is the current authentication state. Authenticated is true
// exactly when Identity is present; the two never disagree because the
// session is only ever replaced wholesale.
type Session struct {
	Identity      *models.Identity `json:"identity,omitempty"`
	Authenticated bool             `json:"authenticated"`
}

// Store owns the process-wide session. It is safe for concurrent use and
// persists every change to the durable record at its configured path.
type Store struct {
	mu        sync.Mutex
	path      string
	sess      Session
	rehydated bool
}

// NewStore returns a Store persisting to path. An empty path falls back
// to DefaultFile.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultFile
	}
	return &Store{path: path}
}

// SetIdentity replaces the session with the given identity, marks it
// authenticated, and writes the durable record.
func (s *Store) SetIdentity(id models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess = Session{Identity: &id, Authenticated: true}
	return s.write()
}

// Clear resets the session to empty and erases the durable record.
// Calling it on an already-empty session is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess = Session{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session record: %w", err)
	}
	return nil
}

// Rehydrate restores the session from the durable record. It runs at most
// once per process and never clobbers a session that is already populated,
// so a live login can never be overwritten by a stale disk copy. An absent
// or malformed record leaves the session empty.
func (s *Store) Rehydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rehydated || s.sess.Authenticated {
		return nil
	}
	s.rehydated = true

	buf, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read session record: %w", err)
	}

	var id models.Identity
	if err := json.Unmarshal(buf, &id); err != nil {
		// A corrupt record is treated as no record at all.
		return nil
	}
	s.sess = Session{Identity: &id, Authenticated: true}
	return nil
}

// Current returns a snapshot of the live session. The returned value is a
// copy; callers must treat it as immutable.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.sess
	if s.sess.Identity != nil {
		id := *s.sess.Identity
		out.Identity = &id
	}
	return out
}

// write persists the identity to the durable record. Caller holds the lock.
func (s *Store) write() error {
	buf, err := json.Marshal(s.sess.Identity)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := os.WriteFile(s.path, buf, 0o600); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}
