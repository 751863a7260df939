package session

import "time"

// TTL is how long a persisted session stays valid after it is written.
const TTL = 24 * time.Hour

// Session is the persisted identity record that lets a client rejoin its
// room silently after a reconnect.
type Session struct {
	SessionID string    `json:"sessionId"`
	Nickname  string    `json:"nickname"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the session carries everything a silent rejoin needs.
func (s *Session) Valid() bool {
	return s != nil && s.SessionID != "" && s.Nickname != "" && s.Name != ""
}

// Store persists at most one session record. Get returns nil (not an error)
// when no record exists or the stored record has expired.
type Store interface {
	Get() (*Session, error)
	Put(s *Session) error
	Remove() error
}
