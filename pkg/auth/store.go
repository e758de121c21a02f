package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store persists user accounts
type Store interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// MemoryStore is a mutex-guarded in-memory user store
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User // keyed by lowercase username
}

// NewMemoryStore creates an empty in-memory user store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

// CreateUser stores a user, failing on duplicate usernames
func (s *MemoryStore) CreateUser(ctx context.Context, user User) error {
	key := strings.ToLower(user.Username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return ErrUserExists
	}
	s.users[key] = user
	return nil
}

// GetUserByUsername looks a user up by username
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// SQLStore persists users in a database/sql database.
// Dialect follows the same convention as the todo sqlstore: "postgres"
// uses $n placeholders, anything else uses ?.
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

// NewSQLStore creates a user store over db
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	if db == nil {
		panic("auth: db cannot be nil")
	}
	return &SQLStore{db: db, postgres: dialect == "postgres"}
}

// Migrate creates the users table if it does not exist
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// CreateUser stores a user, failing on duplicate usernames
func (s *SQLStore) CreateUser(ctx context.Context, user User) error {
	if existing, err := s.GetUserByUsername(ctx, user.Username); err == nil && existing != nil {
		return ErrUserExists
	}
	query := s.rebind(`INSERT INTO users (id, username, email, password_hash, created_at)
	                   VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		user.ID.String(), strings.ToLower(user.Username), user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername looks a user up by username
func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := s.rebind(`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`)

	var (
		user User
		id   string
	)
	err := s.db.QueryRowContext(ctx, query, strings.ToLower(username)).Scan(
		&id, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	user.ID = parsed
	return &user, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)
