package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestFileStore_RoundTrip(t *testing.T) {
	clk := clockwork.NewFakeClock()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"), clk)

	got, err := store.Get()
	if err != nil {
		t.Fatalf("get on empty store: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no session, got %+v", got)
	}

	want := &Session{
		SessionID: "sid-1",
		Nickname:  "alice",
		Name:      "quizroom",
		ExpiresAt: clk.Now().Add(TTL),
	}
	if err := store.Put(want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err = store.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.SessionID != want.SessionID || got.Nickname != want.Nickname || got.Name != want.Name {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestFileStore_ExpiredSessionReadsAsAbsent(t *testing.T) {
	clk := clockwork.NewFakeClock()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"), clk)

	if err := store.Put(&Session{
		SessionID: "sid-1",
		Nickname:  "alice",
		Name:      "quizroom",
		ExpiresAt: clk.Now().Add(TTL),
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	clk.Advance(TTL + time.Hour)

	got, err := store.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session to read as absent, got %+v", got)
	}

	// The expired record is gone for good, not just filtered.
	got, err = store.Get()
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session removed, got %+v", got)
	}
}

func TestFileStore_RemoveIsIdempotent(t *testing.T) {
	clk := clockwork.NewFakeClock()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"), clk)

	if err := store.Remove(); err != nil {
		t.Fatalf("remove on empty store: %v", err)
	}

	if err := store.Put(&Session{SessionID: "sid", Nickname: "a", Name: "r", ExpiresAt: clk.Now().Add(TTL)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestSession_Valid(t *testing.T) {
	var nilSession *Session
	if nilSession.Valid() {
		t.Fatalf("expected nil session invalid")
	}
	if (&Session{SessionID: "sid", Nickname: "a"}).Valid() {
		t.Fatalf("expected session without room invalid")
	}
	if !(&Session{SessionID: "sid", Nickname: "a", Name: "r"}).Valid() {
		t.Fatalf("expected complete session valid")
	}
}

func TestMemStore_Expiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	store := NewMemStore(clk)

	if err := store.Put(&Session{SessionID: "sid", Nickname: "a", Name: "r", ExpiresAt: clk.Now().Add(TTL)}); err != nil {
		t.Fatalf("put: %v", err)
	}

	clk.Advance(TTL + time.Minute)

	got, err := store.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired session absent, got %+v", got)
	}
}
