package services

import (
	"context"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
)

// AuthSvcFacade authenticates staff and manages their accounts.
type AuthSvcFacade interface {
	// Login checks the credentials and issues a signed access token.
	Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, user *domain.User, err error)

	// CreateUser adds a staff member with a hashed password.
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)

	// GetUserByID retrieves a staff member.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
