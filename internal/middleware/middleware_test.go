package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	"github.com/SscSPs/phone_store_caisse/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		actor, _ := GetActorFromContext(c)
		c.String(http.StatusOK, string(actor.Role))
	})...)
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, role domain.UserRole, ttl time.Duration) string {
	t.Helper()
	tok, _, err := utils.GenerateJWT("user-1", role, testSecret, ttl, "test")
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret))

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+token(t, domain.RoleCashier, -time.Minute)).Code)

	w := get(r, "Bearer "+token(t, domain.RoleCashier, time.Hour))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CASHIER", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret), RequireRole(domain.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+token(t, domain.RoleCashier, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+token(t, domain.RoleAdmin, time.Hour)).Code)
}

func TestRateLimit(t *testing.T) {
	limiter, err := NewLimiter("2-M", "test", nil)
	require.NoError(t, err)
	r := newRouter(RateLimit(limiter))

	first := get(r, "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "").Code)
}

func TestNewLimiter_BadRate(t *testing.T) {
	_, err := NewLimiter("lots", "test", nil)
	assert.Error(t, err)
}
