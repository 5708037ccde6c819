package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/logger"
	"hotelier/internal/models"
	"hotelier/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users    UserStore
	sessions SessionIssuer
	cost     int
}

func NewUserService(users UserStore, sessions SessionIssuer) *UserService {
	return &UserService{users: users, sessions: sessions, cost: bcrypt.DefaultCost}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validation("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperrors.Validation("full name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email %s is already registered", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx).Info("User registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and opens a session.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	invalid := apperrors.New(apperrors.KindUnauthorized, "invalid email or password", nil)

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, invalid
	}

	token, expiresAt, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	logger.WithContext(ctx).Info("User logged in", "user_id", user.ID)
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user", id)
	}
	return user, nil
}
