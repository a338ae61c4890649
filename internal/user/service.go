package user

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/statuswise/pkg/apperr"
	"github.com/fkhayef/statuswise/pkg/middleware"
)

// tokenTTL is the lifetime of issued access tokens
const tokenTTL = 24 * time.Hour

// Store is the persistence contract the service depends on
type Store interface {
	Create(ctx context.Context, email, hashedPassword string, name *string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Service handles user registration and authentication
type Service struct {
	store     Store
	jwtSecret string
}

// NewService creates a new user service
func NewService(store Store, jwtSecret string) *Service {
	return &Service{store: store, jwtSecret: jwtSecret}
}

// Signup registers a new user
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperr.InvalidArgument("Email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.InvalidArgument("Password must be at least 8 characters")
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, email, string(hash), req.Name)
}

// Login verifies credentials and issues an access token. Invalid email and
// invalid password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, *User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.IsActive {
		return "", nil, apperr.PermissionDenied("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return "", nil, apperr.PermissionDenied("Invalid credentials")
	}

	token, err := middleware.IssueToken(s.jwtSecret, user.ID, user.Email, tokenTTL)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}
