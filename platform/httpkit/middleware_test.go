package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"realty_crm_backend/platform/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func identityRouter(seen *Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthRequired(&config.Config{JWTAccessSecret: testSecret}), func(c *gin.Context) {
		*seen = MustGetIdentity(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthRequiredPopulatesIdentity(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":             userID.String(),
		"type":            "access",
		"roles":           []string{RoleAdmin},
		"organization_id": orgID.String(),
		"exp":             time.Now().Add(time.Hour).Unix(),
	})

	var seen Identity
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	identityRouter(&seen).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, userID, seen.UserID())
	assert.True(t, seen.HasRole(RoleAdmin))
	gotOrg, ok := seen.OrganizationID()
	assert.True(t, ok)
	assert.Equal(t, orgID, gotOrg)
}

func TestAuthRequiredAcceptsQueryTokenForStreams(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, jwt.MapClaims{"sub": userID.String(), "type": "access"})

	var seen Identity
	rec := httptest.NewRecorder()
	identityRouter(&seen).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, seen.UserID())
	assert.False(t, seen.HasRole(RoleAdmin))
}

func TestAuthRequiredRejectsRefreshTokens(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "type": "refresh"})

	var seen Identity
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	identityRouter(&seen).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestIPRateLimiterRejectsBursts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(0, 1, nil)
	r := gin.New()
	r.POST("/evaluate", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/evaluate", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/evaluate", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
