package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"todoctl/internal/session"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store, err := session.NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Get().Active() {
		t.Fatal("new store should have no session")
	}

	if err := store.Set("tkn1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got := store.Get().Token; got != "tkn1" {
		t.Errorf("expected tkn1, got %q", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if store.Get().Active() {
		t.Error("expected absent session after clear")
	}
}

func TestFileStore_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	first, err := session.NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := first.Set("persisted"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	second, err := session.NewFileStore(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := second.Get().Token; got != "persisted" {
		t.Errorf("expected persisted token, got %q", got)
	}

	if err := second.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	third, err := session.NewFileStore(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if third.Get().Active() {
		t.Error("cleared session should not come back after restart")
	}
}

func TestFileStore_ClearWhenAbsent(t *testing.T) {
	store, err := session.NewFileStore(filepath.Join(t.TempDir(), "token.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("clear on absent session should be a no-op, got %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}
	if _, err := session.NewFileStore(path); err == nil {
		t.Error("expected error for corrupt token file")
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := session.NewMemoryStore("")
	if err := store.Set("abc"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if store.Get().Token != "abc" {
		t.Errorf("expected abc, got %q", store.Get().Token)
	}
	if err := store.Set(""); err == nil {
		t.Error("expected error for empty token")
	}
	_ = store.Clear()
	if store.Get().Active() {
		t.Error("expected absent session")
	}
}

func TestTokenSource(t *testing.T) {
	store := session.NewMemoryStore("")
	ts := session.TokenSource(store)

	if _, err := ts.Token(); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}

	_ = store.Set("live")
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "live" || tok.Type() != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}

	_ = store.Clear()
	if _, err := ts.Token(); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("token source should observe clear, got %v", err)
	}
}
