package auth

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
)

type fakeUserStore struct {
	users     map[string]*User
	nextID    uint64
	createErr error
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*User, error) {
	return s.users[username], nil
}

func (s *fakeUserStore) CreateTx(_ context.Context, _ db.DBTX, u *User) (uint64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.nextID++
	cp := *u
	cp.UserID = s.nextID
	s.users[u.Username] = &cp
	return s.nextID, nil
}

func (s *fakeUserStore) CountByRole(_ context.Context, role string) (int, error) {
	n := 0
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeStats struct {
	created map[string]time.Time
	err     error
}

func (f *fakeStats) CreateTx(_ context.Context, _ db.DBTX, username string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.created[username] = at
	return nil
}

var testSecret = []byte("test-secret")

func newTestService() (*Service, *fakeUserStore, *fakeStats) {
	store := &fakeUserStore{users: map[string]*User{}}
	stats := &fakeStats{created: map[string]time.Time{}}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{
		store: store,
		stats: stats,
		inTx: func(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
			return fn(ctx, nil)
		},
		secret: testSecret,
		ttl:    time.Hour,
		now:    func() time.Time { return now },
	}
	return svc, store, stats
}

func TestRegister_CreatesUserAndStatistics(t *testing.T) {
	svc, store, stats := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret1",
	}, RoleUser)

	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.UserID)
	assert.Equal(t, RoleUser, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.users["alice"].PasswordHash), []byte("secret1")))
	assert.Equal(t, u.CreatedAt, stats.created["alice"])
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []RegisterInput{
		{Username: "al", Email: "al@example.com", Password: "secret1"},
		{Username: "alice", Email: "nope", Password: "secret1"},
		{Username: "alice", Email: "alice@example.com", Password: "123"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in, RoleUser)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, "%+v", in)
	}

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}, "ROOT")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	in := RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}

	_, err := svc.Register(ctx, in, RoleUser)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in, RoleUser)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	store.createErr = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_users_email'"}
	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "alice@example.com", Password: "secret1"}, RoleUser)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegister_StatisticsFailureFails(t *testing.T) {
	svc, _, stats := newTestService()
	stats.err = errors.New("db down")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret1",
	}, RoleUser)

	assert.ErrorContains(t, err, "db down")
}

func TestLogin_IssuesToken(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}, RoleAdmin)
	require.NoError(t, err)

	tokenStr, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) { return testSecret, nil },
		jwt.WithTimeFunc(func() time.Time { return svc.now() }))
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatUint(u.UserID, 10), claims["sub"])
	assert.Equal(t, "alice", claims["name"])
	assert.Equal(t, RoleAdmin, claims["role"])
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}, RoleUser)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	cfg := config.AdminConfig{Username: "root", Email: "root@example.com", Password: "changeme"}

	created, err := svc.EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, RoleAdmin, store.users["root"].Role)

	created, err = svc.EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created, "second call is a no-op")

	created, err = svc.EnsureAdmin(ctx, config.AdminConfig{})
	require.NoError(t, err)
	assert.False(t, created)
}
