package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/infrastructure/config"
	"github.com/dinnerarbiter/core/internal/infrastructure/http/middleware"
)

type AuthServiceTestSuite struct {
	suite.Suite
	authService *AuthService
	logger      *zap.Logger
}

func (s *AuthServiceTestSuite) SetupSuite() {
	cfg := &config.Config{Auth: config.AuthConfig{
		JWTSecret:     "test-secret-key-for-testing-only",
		JWTExpiration: time.Hour,
	}}
	s.logger = zap.NewNop()
	s.authService = NewAuthService(cfg, s.logger)
}

func (s *AuthServiceTestSuite) TestIssueAndValidateToken() {
	token, err := s.authService.IssueToken("household-123")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), token)

	householdKey, err := s.authService.ValidateToken(token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "household-123", householdKey)
}

func (s *AuthServiceTestSuite) TestValidateToken_MalformedTokenFails() {
	_, err := s.authService.ValidateToken("not-a-jwt")
	assert.Error(s.T(), err)
}

func (s *AuthServiceTestSuite) TestValidateToken_ExpiredTokenFails() {
	cfg := &config.Config{Auth: config.AuthConfig{
		JWTSecret:     "test-secret-key-for-testing-only",
		JWTExpiration: 1 * time.Millisecond,
	}}
	shortLived := NewAuthService(cfg, s.logger)
	token, err := shortLived.IssueToken("household-123")
	require.NoError(s.T(), err)

	time.Sleep(5 * time.Millisecond)

	_, err = shortLived.ValidateToken(token)
	assert.Error(s.T(), err)
}

func (s *AuthServiceTestSuite) TestMiddleware_ValidTokenAttachesHouseholdKey() {
	token, err := s.authService.IssueToken("household-abc")
	require.NoError(s.T(), err)

	var observed string
	handler := s.authService.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observed = middleware.HouseholdKeyFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/decision", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), "household-abc", observed)
}

func (s *AuthServiceTestSuite) TestMiddleware_MissingHeaderRejects() {
	called := false
	handler := s.authService.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/decision", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
	assert.False(s.T(), called)
}

func (s *AuthServiceTestSuite) TestMiddleware_MalformedHeaderRejects() {
	handler := s.authService.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/decision", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
