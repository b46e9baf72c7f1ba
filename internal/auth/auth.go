// Package auth manages user accounts. Passwords are stored as bcrypt
// hashes; a user record also carries the preferred academic level used as
// the default for new sessions.
package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/faust-ai/faust/internal/level"
)

var (
	// ErrUsernameTaken is returned by Register for an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned by Login for a wrong username or
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserNotFound is returned when the named user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt input limit
	maxUsernameLen = 64
)

const createUsersSQL = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    level         TEXT NOT NULL DEFAULT 'normal',
    created_at    TEXT NOT NULL
);
`

// User is an account record. The password hash never leaves this package.
type User struct {
	ID        string
	Username  string
	Level     level.Level
	CreatedAt time.Time
}

// Service provides account registration, login and preferences, backed by
// the same SQLite database that holds sessions.
type Service struct {
	db *sql.DB
}

// NewService ensures the users table exists on db.
func NewService(db *sql.DB) (*Service, error) {
	if _, err := db.Exec(createUsersSQL); err != nil {
		return nil, fmt.Errorf("create users table: %w", err)
	}
	return &Service{db: db}, nil
}

// Register creates an account with a bcrypt-hashed password and the
// default academic level.
func (s *Service) Register(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLen {
		return nil, fmt.Errorf("username must be 1-%d characters", maxUsernameLen)
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return nil, fmt.Errorf("password must be %d-%d characters", minPasswordLen, maxPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:        uuid.NewString(),
		Username:  username,
		Level:     level.Default,
		CreatedAt: time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, username, password_hash, level, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, string(hash), u.Level.String(),
		u.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%q: %w", username, ErrUsernameTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login verifies the password and returns the account.
func (s *Service) Login(username, password string) (*User, error) {
	row := s.db.QueryRow(`
		SELECT id, username, password_hash, level, created_at
		FROM users WHERE username = ?`, strings.TrimSpace(username))

	var u User
	var hash, lvl, createdAt string
	err := row.Scan(&u.ID, &u.Username, &hash, &lvl, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	u.Level, _ = level.Parse(lvl)
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

// Lookup returns the account by username, without a password check. Used
// for local single-user mode where the OS login is trusted.
func (s *Service) Lookup(username string) (*User, error) {
	row := s.db.QueryRow(`
		SELECT id, username, level, created_at
		FROM users WHERE username = ?`, strings.TrimSpace(username))

	var u User
	var lvl, createdAt string
	err := row.Scan(&u.ID, &u.Username, &lvl, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%q: %w", username, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	u.Level, _ = level.Parse(lvl)
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

// SetLevel updates the user's preferred academic level.
func (s *Service) SetLevel(userID string, lvl level.Level) error {
	if !lvl.Valid() {
		return level.ErrInvalidLevel
	}
	result, err := s.db.Exec(`UPDATE users SET level = ? WHERE id = ?`, lvl.String(), userID)
	if err != nil {
		return fmt.Errorf("set level: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
