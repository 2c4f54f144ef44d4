package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// UserService owns user records: registration, lookup and the admin-only
// listing. Authentication stays outside this system; callers arrive already
// identified.
type UserService struct {
	users UserDirectory
}

func NewUserService(users UserDirectory) *UserService {
	return &UserService{users: users}
}

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Username string
	Email    string
	Role     string
}

// Create registers a new user. The role defaults to "user"; only the
// directory's uniqueness constraint guards duplicate emails.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (core.User, error) {
	if in.Role == "" {
		in.Role = core.RoleUser
	}

	u := core.User{
		ID:       uuid.New(),
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Role:     in.Role,
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Get returns one user by ID.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (core.User, error) {
	return s.users.GetUser(ctx, id)
}

// ListAll returns every user and is restricted to admins.
func (s *UserService) ListAll(ctx context.Context, actor core.User) ([]core.User, error) {
	if actor.Role != core.RoleAdmin {
		return nil, fmt.Errorf("%w: admins only", core.ErrUnauthorized)
	}
	return s.users.ListUsers(ctx)
}
