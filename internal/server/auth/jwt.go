// Package auth authenticates Fe requests: per-request HMAC signatures for
// the message API and short-lived admin tokens for registration.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role accepted by the registration endpoint.
const RoleAdmin = "admin"

// AdminClaims are the claims of an admin token.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// GenerateAdminToken mints an HS256 admin token for subject.
func GenerateAdminToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Role: RoleAdmin,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseAdminToken validates tokenString and returns its subject. Any
// failure, including a missing admin role, wraps common.ErrInvalidToken.
func ParseAdminToken(tokenString string, secretKey []byte) (string, error) {
	claims := &AdminClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Role != RoleAdmin {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
