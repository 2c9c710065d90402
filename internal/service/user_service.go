package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// UserService manages platform accounts.
type UserService struct {
	users userStore
	auth  *AuthService
	log   zerolog.Logger
}

func NewUserService(users userStore, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		auth:  auth,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// Create registers a new account with a hashed password.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.Role(req.Role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies email + password and returns the matching account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Same error as a wrong password so login probes cannot tell
			// accounts apart.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves one account.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
