// Package security provides the household-key JWT authentication this
// service uses in place of the teacher's full user/session/CSRF stack:
// every request is scoped to exactly one household, carried as a claim
// on a bearer token, never a user identity.
package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dinnerarbiter/core/internal/infrastructure/config"
	"github.com/dinnerarbiter/core/internal/infrastructure/http/middleware"
	apperrors "github.com/dinnerarbiter/core/pkg/errors"
)

// Claims is the minimal JWT payload this service trusts: a household
// key and the registered expiry/issued-at fields.
type Claims struct {
	HouseholdKey string `json:"household_key"`
	jwt.RegisteredClaims
}

// AuthService issues and validates household-scoped bearer tokens.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

func NewAuthService(cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		secret: []byte(cfg.Auth.JWTSecret),
		ttl:    cfg.Auth.JWTExpiration,
		logger: logger.Named("auth_service"),
	}
}

// IssueToken mints a bearer token scoped to one household.
func (a *AuthService) IssueToken(householdKey string) (string, error) {
	now := time.Now()
	claims := &Claims{
		HouseholdKey: householdKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "dinner-arbiter",
			Subject:   householdKey,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a bearer token, returning its
// household key claim.
func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.HouseholdKey == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.HouseholdKey, nil
}

// Middleware extracts and validates the bearer token on every request,
// attaching the resolved household key to the request context for
// handlers to read via middleware.HouseholdKeyFromContext.
func (a *AuthService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			a.writeUnauthorized(w, r, "missing or malformed Authorization header")
			return
		}

		householdKey, err := a.ValidateToken(parts[1])
		if err != nil {
			a.logger.Info("token validation failed", zap.Error(err))
			a.writeUnauthorized(w, r, "invalid or expired token")
			return
		}

		ctx := middleware.WithHouseholdKey(r.Context(), householdKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthService) writeUnauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	appErr := apperrors.NewInvalidTokenError(reason)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	_, _ = w.Write([]byte(`{"error":{"code":"` + string(appErr.Code) + `","message":"` + appErr.Message + `"}}`))
}
