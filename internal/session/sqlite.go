package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/faust-ai/faust/internal/level"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    name        TEXT NOT NULL,
    level       TEXT NOT NULL DEFAULT 'normal',
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    tokens_used INTEGER DEFAULT 0,
    turn_count  INTEGER DEFAULT 0,
    turns       TEXT NOT NULL DEFAULT '[]',
    UNIQUE(user_id, name)
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path (~/.local/share/faust/faust.db).
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "faust", "faust.db"), nil
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying handle so other repositories (users) can share
// the same database file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Create(sess *Session) error {
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	turnJSON, err := json.Marshal(sess.Turns)
	if err != nil {
		return fmt.Errorf("marshal turns: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions
			(id, user_id, name, level, created_at, updated_at, tokens_used, turn_count, turns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.UserID,
		sess.Name,
		sess.Level.String(),
		sess.CreatedAt.Format(time.RFC3339Nano),
		sess.UpdatedAt.Format(time.RFC3339Nano),
		sess.TokensUsed,
		len(sess.Turns),
		string(turnJSON),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%q: %w", sess.Name, ErrDuplicateSession)
	}
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(sess *Session) error {
	sess.UpdatedAt = time.Now()

	turnJSON, err := json.Marshal(sess.Turns)
	if err != nil {
		return fmt.Errorf("marshal turns: %w", err)
	}

	result, err := s.db.Exec(`
		UPDATE sessions
		SET name = ?, level = ?, updated_at = ?, tokens_used = ?, turn_count = ?, turns = ?
		WHERE id = ?`,
		sess.Name,
		sess.Level.String(),
		sess.UpdatedAt.Format(time.RFC3339Nano),
		sess.TokensUsed,
		len(sess.Turns),
		string(turnJSON),
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%q: %w", sess.Name, ErrSessionNotFound)
	}
	return nil
}

func (s *SQLiteStore) Load(userID, name string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, name, level, created_at, updated_at, tokens_used, turns
		FROM sessions WHERE user_id = ? AND name = ?`, userID, name)

	var sess Session
	var lvl, createdAt, updatedAt, turnJSON string
	err := row.Scan(
		&sess.ID, &sess.UserID, &sess.Name, &lvl,
		&createdAt, &updatedAt, &sess.TokensUsed, &turnJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%q: %w", name, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	// A level written by a newer version falls back to the default.
	sess.Level, _ = level.Parse(lvl)
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	if err := json.Unmarshal([]byte(turnJSON), &sess.Turns); err != nil {
		return nil, fmt.Errorf("unmarshal turns: %w", err)
	}

	return &sess, nil
}

func (s *SQLiteStore) List(userID string) ([]SessionInfo, error) {
	rows, err := s.db.Query(`
		SELECT name, level, created_at, updated_at, turn_count, tokens_used
		FROM sessions WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var infos []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var lvl, createdAt, updatedAt string
		if err := rows.Scan(&info.Name, &lvl, &createdAt, &updatedAt, &info.Turns, &info.Tokens); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.Level, _ = level.Parse(lvl)
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *SQLiteStore) Rename(userID, oldName, newName string) error {
	result, err := s.db.Exec(`
		UPDATE sessions SET name = ?, updated_at = ?
		WHERE user_id = ? AND name = ?`,
		newName, time.Now().Format(time.RFC3339Nano), userID, oldName)
	if isUniqueViolation(err) {
		return fmt.Errorf("%q: %w", newName, ErrDuplicateSession)
	}
	if err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%q: %w", oldName, ErrSessionNotFound)
	}
	return nil
}

func (s *SQLiteStore) Delete(userID, name string) error {
	result, err := s.db.Exec("DELETE FROM sessions WHERE user_id = ? AND name = ?", userID, name)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%q: %w", name, ErrSessionNotFound)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite does not export a typed error for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
