package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// FileStore persists the session record as a small JSON file on disk. It is
// the Go analogue of the browser client's session cookie.
type FileStore struct {
	path  string
	clock clockwork.Clock
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string, clock clockwork.Clock) *FileStore {
	return &FileStore{path: path, clock: clock}
}

// Get reads the stored session. Expired records are removed and reported as
// absent.
func (st *FileStore) Get() (*Session, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}

	if st.clock.Now().After(s.ExpiresAt) {
		log.Debug().
			Str("session_id", s.SessionID).
			Time("expired_at", s.ExpiresAt).
			Msg("stored session expired, removing")
		if err := st.Remove(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &s, nil
}

// Put writes the session record, replacing any previous one. The write goes
// through a temp file and rename so a crash never leaves a half-written record.
func (st *FileStore) Put(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session file: %w", err)
	}

	if err := os.Rename(tmpName, st.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}

	log.Debug().
		Str("session_id", s.SessionID).
		Str("room", s.Name).
		Time("expires_at", s.ExpiresAt).
		Msg("session persisted")
	return nil
}

// Remove deletes the stored session. Removing an absent record is a no-op.
func (st *FileStore) Remove() error {
	if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
