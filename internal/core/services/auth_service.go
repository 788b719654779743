package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	apperrors "github.com/VaughnVernon/SchemaMinder-sub003/internal/core/errors"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// AuthService identifies editors so their changes can be attributed and
// self-originated messages suppressed.
type AuthService struct {
	users  ports.UserRepository
	logger *slog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new auth service.
func NewAuthService(users ports.UserRepository, logger *slog.Logger) ports.AuthService {
	return &AuthService{
		users:  users,
		logger: logger.With("component", "auth_service"),
	}
}

// Register creates a new editor account.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string, tenantID uuid.UUID) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrUserExists
	}

	user, err := domain.NewUser(fullName, email, password, tenantID)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", created.ID, "tenant_id", created.TenantID)
	return created, nil
}

// Login verifies credentials. Invalid email and invalid password are reported
// identically so the endpoint does not leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}
