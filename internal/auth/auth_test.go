package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/faust-ai/faust/internal/level"
	"github.com/faust-ai/faust/internal/session"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := session.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc, err := NewService(store.DB())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.Register("alice", "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == "" {
		t.Error("registered user has empty ID")
	}
	if u.Level != level.Default {
		t.Errorf("Level = %v, want Default", u.Level)
	}

	logged, err := svc.Login("alice", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != u.ID {
		t.Errorf("Login ID = %q, want %q", logged.ID, u.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("alice", "secret123"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Login("alice", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	// Unknown user yields the same error as a wrong password.
	_, err = svc.Login("nobody", "secret123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("alice", "secret123"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register("alice", "different456")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("alice", "short"); err == nil {
		t.Fatal("expected error for 5-character password")
	}
	if _, err := svc.Register("", "secret123"); err == nil {
		t.Fatal("expected error for empty username")
	}
}

func TestSetLevel(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.Register("alice", "secret123")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.SetLevel(u.ID, level.Academic); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	reloaded, err := svc.Lookup("alice")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Level != level.Academic {
		t.Errorf("Level = %v, want Academic", reloaded.Level)
	}

	if err := svc.SetLevel("no-such-id", level.Child); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SetLevel missing user: err = %v, want ErrUserNotFound", err)
	}
}

func TestLookupMissing(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Lookup("ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
