package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/phone_store_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
	"github.com/SscSPs/phone_store_caisse/internal/utils"
	"github.com/google/uuid"
)

// TokenSettings configures the access tokens Login issues.
type TokenSettings struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// authService implements AuthSvcFacade
type authService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	tokens   TokenSettings
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, tokens TokenSettings) portssvc.AuthSvcFacade {
	return &authService{userRepo: userRepo, tokens: tokens}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

var errInvalidCredentials = fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)

func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, *domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Login for unknown user", slog.String("username", username))
			return "", time.Time{}, nil, errInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return "", time.Time{}, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogWarn(ctx, "Login with wrong password", slog.String("user_id", user.UserID))
		return "", time.Time{}, nil, errInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateJWT(user.UserID, user.Role, s.tokens.Secret, s.tokens.Expiry, s.tokens.Issuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token", slog.String("user_id", user.UserID))
		return "", time.Time{}, nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.LogInfo(ctx, "User logged in", slog.String("user_id", user.UserID))
	return token, expiresAt, user, nil
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", apperrors.ErrValidation)
	}
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, req.Role)
	}
	if len(req.Password) < utils.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, utils.MinPasswordLength)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user", slog.String("username", username))
		}
		return nil, err
	}

	s.LogInfo(ctx, "User created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

func (s *authService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}
