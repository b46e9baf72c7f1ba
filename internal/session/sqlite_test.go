package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/faust-ai/faust/internal/level"
	"github.com/faust-ai/faust/internal/provider"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndLoad(t *testing.T) {
	store := newTestStore(t)

	s := New("alice", "derivatives", level.Academic)
	s.AddTurn(provider.RoleUser, "what is $\\frac{dy}{dx}$?")
	s.AddTurn(provider.RoleAssistant, "The derivative $\\frac{dy}{dx}$ measures...")
	s.TokensUsed = 100

	if err := store.Create(s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	loaded, err := store.Load("alice", "derivatives")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.ID != s.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, s.ID)
	}
	if loaded.Level != level.Academic {
		t.Errorf("Level = %v, want Academic", loaded.Level)
	}
	if loaded.TokensUsed != 100 {
		t.Errorf("TokensUsed = %d, want 100", loaded.TokensUsed)
	}
	if len(loaded.Turns) != 2 {
		t.Fatalf("Turns len = %d, want 2", len(loaded.Turns))
	}
	// Markup is stored raw, never pre-rendered.
	if loaded.Turns[0].Content != "what is $\\frac{dy}{dx}$?" {
		t.Errorf("first turn = %q, want raw markup", loaded.Turns[0].Content)
	}
	if loaded.Turns[1].Role != provider.RoleAssistant {
		t.Errorf("second turn role = %q, want assistant", loaded.Turns[1].Role)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set after Create")
	}
}

func TestCreateDuplicateLeavesOriginal(t *testing.T) {
	store := newTestStore(t)

	orig := New("alice", "algebra", level.Normal)
	orig.AddTurn(provider.RoleUser, "solve for x")
	if err := store.Create(orig); err != nil {
		t.Fatal(err)
	}

	dup := New("alice", "algebra", level.Child)
	err := store.Create(dup)
	if !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("Create duplicate: err = %v, want ErrDuplicateSession", err)
	}

	// The original session must be untouched.
	loaded, err := store.Load("alice", "algebra")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ID != orig.ID {
		t.Errorf("ID = %q, want original %q", loaded.ID, orig.ID)
	}
	if loaded.Level != level.Normal {
		t.Errorf("Level = %v, want Normal", loaded.Level)
	}
	if len(loaded.Turns) != 1 {
		t.Errorf("Turns len = %d, want 1", len(loaded.Turns))
	}
}

func TestSameNameDifferentUsers(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(New("alice", "homework", level.Normal)); err != nil {
		t.Fatal(err)
	}
	// Name uniqueness is per user, not global.
	if err := store.Create(New("bob", "homework", level.Child)); err != nil {
		t.Fatalf("Create for second user: %v", err)
	}
}

func TestLoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("alice", "nonexistent")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestIncompleteTurnRoundTrip(t *testing.T) {
	store := newTestStore(t)

	s := New("alice", "interrupted", level.Normal)
	s.AddTurn(provider.RoleUser, "prove it")
	s.AddIncompleteTurn("Consider the sequence")
	if err := store.Create(s); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load("alice", "interrupted")
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Turns[1].Incomplete {
		t.Error("interrupted turn lost its Incomplete flag")
	}
	if loaded.Turns[0].Incomplete {
		t.Error("complete turn gained an Incomplete flag")
	}
}

func TestListOrderedByActivity(t *testing.T) {
	store := newTestStore(t)

	older := New("alice", "older", level.Normal)
	newer := New("alice", "newer", level.Normal)

	if err := store.Create(older); err != nil {
		t.Fatal(err)
	}
	// Small delay to ensure different updated_at.
	time.Sleep(10 * time.Millisecond)
	if err := store.Create(newer); err != nil {
		t.Fatal(err)
	}

	infos, err := store.List("alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List len = %d, want 2", len(infos))
	}
	// Most recently active first.
	if infos[0].Name != "newer" || infos[1].Name != "older" {
		t.Errorf("List order = [%q, %q], want [newer, older]", infos[0].Name, infos[1].Name)
	}

	// Touching the older session moves it to the front.
	time.Sleep(10 * time.Millisecond)
	older.AddTurn(provider.RoleUser, "back again")
	if err := store.Save(older); err != nil {
		t.Fatal(err)
	}
	infos, err = store.List("alice")
	if err != nil {
		t.Fatal(err)
	}
	if infos[0].Name != "older" {
		t.Errorf("after Save, first = %q, want older", infos[0].Name)
	}
	if infos[0].Turns != 1 {
		t.Errorf("List turns = %d, want 1", infos[0].Turns)
	}
}

func TestListScopedToUser(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(New("alice", "mine", level.Normal)); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(New("bob", "theirs", level.Normal)); err != nil {
		t.Fatal(err)
	}

	infos, err := store.List("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Name != "mine" {
		t.Errorf("List = %v, want only alice's session", infos)
	}
}

func TestRename(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(New("alice", "old-name", level.Normal)); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(New("alice", "taken", level.Normal)); err != nil {
		t.Fatal(err)
	}

	if err := store.Rename("alice", "old-name", "new-name"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := store.Load("alice", "new-name"); err != nil {
		t.Errorf("Load after rename: %v", err)
	}
	if _, err := store.Load("alice", "old-name"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("old name still resolves: %v", err)
	}

	// Renaming onto an existing name must fail.
	if err := store.Rename("alice", "new-name", "taken"); !errors.Is(err, ErrDuplicateSession) {
		t.Errorf("Rename to taken name: err = %v, want ErrDuplicateSession", err)
	}
	// Renaming a missing session must fail.
	if err := store.Rename("alice", "ghost", "anything"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Rename missing: err = %v, want ErrSessionNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(New("alice", "del-me", level.Normal)); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete("alice", "del-me"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load("alice", "del-me"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("expected ErrSessionNotFound after delete")
	}
	if err := store.Delete("alice", "del-me"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Delete nonexistent: err = %v, want ErrSessionNotFound", err)
	}
}

func TestSaveUpdatesExisting(t *testing.T) {
	store := newTestStore(t)

	s := New("alice", "update-me", level.Normal)
	s.AddTurn(provider.RoleUser, "v1")
	if err := store.Create(s); err != nil {
		t.Fatal(err)
	}

	s.AddTurn(provider.RoleAssistant, "v2")
	s.Level = level.Academic
	s.TokensUsed = 50
	if err := store.Save(s); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load("alice", "update-me")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Turns) != 2 {
		t.Errorf("Turns len = %d, want 2", len(loaded.Turns))
	}
	if loaded.Level != level.Academic {
		t.Errorf("Level = %v, want Academic", loaded.Level)
	}
	if loaded.TokensUsed != 50 {
		t.Errorf("TokensUsed = %d, want 50", loaded.TokensUsed)
	}
}

func TestMessagesTrimsToBudget(t *testing.T) {
	s := New("alice", "long", level.Normal)
	s.AddTurn(provider.RoleUser, "aaaaaaaaaa")      // 10 chars
	s.AddTurn(provider.RoleAssistant, "bbbbbbbbbb") // 10 chars
	s.AddTurn(provider.RoleUser, "cccccccccc")      // 10 chars

	msgs := s.Messages(25)
	if len(msgs) != 2 {
		t.Fatalf("Messages len = %d, want 2", len(msgs))
	}
	// Oldest turn dropped, order preserved.
	if msgs[0].Text != "bbbbbbbbbb" || msgs[1].Text != "cccccccccc" {
		t.Errorf("Messages = %v, want newest two in order", msgs)
	}

	if got := s.Messages(0); len(got) != 3 {
		t.Errorf("Messages(0) len = %d, want all 3", len(got))
	}
}
