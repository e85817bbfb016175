package caisseclient

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/SscSPs/phone_store_caisse/internal/core/services"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
	"github.com/SscSPs/phone_store_caisse/internal/handlers"
	"github.com/SscSPs/phone_store_caisse/internal/middleware"
	"github.com/SscSPs/phone_store_caisse/internal/platform/config"
	"github.com/SscSPs/phone_store_caisse/internal/platform/lock"
	"github.com/SscSPs/phone_store_caisse/internal/repositories/memory"
	"github.com/SscSPs/phone_store_caisse/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newLedgerServer starts the real API over an in-memory store and returns a client
// logged in as an admin.
func newLedgerServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost

	cfg := &config.Config{
		IsProduction:      true,
		JWTSecret:         "client-test-secret",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "caisse-client-test",
		RateLimit:         "10000-M",
		LoginRateLimit:    "10000-M",
		ExportMaxRows:     1000,
		DefaultPageSize:   10,
		MaxPageSize:       100,
	}
	svc := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore()), lock.Noop())
	_, err := svc.Auth.CreateUser(t.Context(), dto.CreateUserRequest{
		Username: "boss",
		Password: "password123",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, handlers.RegisterRoutes(r, cfg, svc, nil))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	anon := New(srv.URL + "/api/v1")
	token, err := anon.Login(t.Context(), "boss", "password123")
	require.NoError(t, err)
	return srv, anon.WithSession(token)
}
