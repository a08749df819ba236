package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"library-backend/internal/platform/db"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	UserID       uint64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	CreateTx(ctx context.Context, tx db.DBTX, u *User) (uint64, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetByUsername returns nil, nil when the user does not exist.
func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	const q = `
SELECT user_id, username, email, password_hash, role, created_at
FROM users
WHERE username = ?
LIMIT 1
`
	var u User
	err := s.db.QueryRowContext(ctx, q, username).Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateTx(ctx context.Context, tx db.DBTX, u *User) (uint64, error) {
	const q = `
INSERT INTO users (username, email, password_hash, role, created_at)
VALUES (?, ?, ?, ?, ?)
`
	res, err := tx.ExecContext(ctx, q, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *Store) CountByRole(ctx context.Context, role string) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE role = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, role).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
