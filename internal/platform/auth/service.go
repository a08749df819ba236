package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
)

var (
	ErrAlreadyExists      = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("authentication failed")
)

// ValidationError is returned for malformed signup input.
type ValidationError struct{ Field, Reason string }

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

// StatisticsInitializer creates the per-user statistics row in the signup transaction.
type StatisticsInitializer interface {
	CreateTx(ctx context.Context, tx db.DBTX, username string, registeredAt time.Time) error
}

type txRunner func(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error

type Service struct {
	store  UserStore
	stats  StatisticsInitializer
	inTx   txRunner
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(conn *sql.DB, stats StatisticsInitializer, secret []byte, ttl time.Duration) *Service {
	return &Service{
		store: NewStore(conn),
		stats: stats,
		inTx: func(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
			return db.RunInTx(ctx, conn, nil, fn)
		},
		secret: secret,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (in RegisterInput) validate() error {
	if n := len(strings.TrimSpace(in.Username)); n < 3 || n > 64 {
		return &ValidationError{Field: "username", Reason: "must be 3..64 characters"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return &ValidationError{Field: "email", Reason: "invalid address"}
	}
	if len(in.Password) < 6 {
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	return nil
}

// Register creates the account and its zeroed statistics row in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput, role string) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if role != RoleUser && role != RoleAdmin {
		return nil, &ValidationError{Field: "role", Reason: "unknown role"}
	}

	exists, err := s.store.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}
	err = s.inTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		id, err := s.store.CreateTx(ctx, tx, u)
		if err != nil {
			return err
		}
		u.UserID = id
		return s.stats.CreateTx(ctx, tx, u.Username, u.CreatedAt)
	})
	if db.IsDuplicateKey(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", in.Username, err)
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(u)
}

func (s *Service) issueToken(u *User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatUint(u.UserID, 10),
		"name": u.Username,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// EnsureAdmin creates the configured bootstrap admin when the system has none.
func (s *Service) EnsureAdmin(ctx context.Context, c config.AdminConfig) (bool, error) {
	if c.Username == "" {
		return false, nil
	}
	n, err := s.store.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Register(ctx, RegisterInput{Username: c.Username, Email: c.Email, Password: c.Password}, RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
