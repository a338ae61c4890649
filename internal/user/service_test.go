package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/statuswise/pkg/apperr"
	"github.com/fkhayef/statuswise/pkg/middleware"
)

type memStore struct {
	users  map[int64]*User
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{users: make(map[int64]*User)}
}

func (m *memStore) Create(ctx context.Context, email, hashedPassword string, name *string) (*User, error) {
	m.nextID++
	u := &User{
		ID:             m.nextID,
		Email:          email,
		Name:           name,
		IsActive:       true,
		HashedPassword: hashedPassword,
	}
	m.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

const testSecret = "test-secret"

func TestSignup(t *testing.T) {
	svc := NewService(newMemStore(), testSecret)

	u, err := svc.Signup(context.Background(), &SignupRequest{
		Email:    "  Alice@Example.COM ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	// Email is normalized before storage
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "correct horse", u.HashedPassword)
}

func TestSignupValidation(t *testing.T) {
	svc := NewService(newMemStore(), testSecret)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &SignupRequest{Email: "", Password: "long enough"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = svc.Signup(ctx, &SignupRequest{Email: "a@b.com", Password: "short"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := NewService(newMemStore(), testSecret)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &SignupRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	// Case differences do not dodge the uniqueness check
	_, err = svc.Signup(ctx, &SignupRequest{Email: "ALICE@example.com", Password: "battery staple"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestLogin(t *testing.T) {
	svc := NewService(newMemStore(), testSecret)
	ctx := context.Background()

	created, err := svc.Signup(ctx, &SignupRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	token, u, err := svc.Login(ctx, &LoginRequest{Email: "Alice@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	// The token round-trips through the verification path
	claims, err := middleware.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := NewService(newMemStore(), testSecret)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &SignupRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	// Unknown email and wrong password fail identically
	_, _, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))

	_, _, err = svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))
}

func TestGetByID(t *testing.T) {
	svc := NewService(newMemStore(), testSecret)
	ctx := context.Background()

	created, err := svc.Signup(ctx, &SignupRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	u, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = svc.GetByID(ctx, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
