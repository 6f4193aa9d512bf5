// Package token_adapter verifies the session tokens issued by the external
// identity provider.
package token_adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "foodi3-identity"

// TokenService implements IdentityProviderPort over HS256 JWTs.
type TokenService struct {
	signingKey []byte
	now        func() time.Time
}

func NewTokenService(signingKey string) (*TokenService, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenService{signingKey: []byte(signingKey), now: time.Now}, nil
}

type sessionClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for user. The identity provider does
// this in production; the service itself only uses it for local tooling.
func (s *TokenService) GenerateToken(ctx context.Context, user domain.User, ttl time.Duration) (string, error) {
	serviceLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TokenService",
		"method":    "GenerateToken",
		"user_id":   user.ID,
	})
	if user.ID == "" {
		return "", fmt.Errorf("cannot issue a token without a user id")
	}

	now := s.now()
	claims := &sessionClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Avatar:   user.Avatar,
		Provider: user.OAuthProvider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		serviceLogger.Error("Failed to sign token", err, nil)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	serviceLogger.Debug("Token generated.", port.Fields{"ttl": ttl.String()})
	return signed, nil
}

// CurrentUser resolves a bearer token to the signed-in user. Every failure is
// reported as domain.ErrNotAuthenticated.
func (s *TokenService) CurrentUser(ctx context.Context, credential string) (*domain.User, error) {
	serviceLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TokenService",
		"method":    "CurrentUser",
	})
	if credential == "" {
		return nil, domain.ErrNotAuthenticated
	}

	token, err := jwt.ParseWithClaims(credential, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			serviceLogger.Info("Session token has expired", nil)
		} else {
			serviceLogger.Warn("Rejected session token", port.Fields{"error": err.Error()})
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrNotAuthenticated, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		serviceLogger.Error("Token parsed but carries no user", nil, nil)
		return nil, domain.ErrNotAuthenticated
	}

	user := &domain.User{
		ID:            claims.UserID,
		Email:         claims.Email,
		Name:          claims.Name,
		Avatar:        claims.Avatar,
		OAuthProvider: claims.Provider,
	}
	if claims.IssuedAt != nil {
		user.CreatedAt = claims.IssuedAt.Time
	}
	return user, nil
}
