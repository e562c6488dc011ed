package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateAdminToken("ops", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}

	sub, err := ParseAdminToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseAdminToken error: %v", err)
	}
	if sub != "ops" {
		t.Fatalf("subject mismatch: got %q want %q", sub, "ops")
	}
}

func TestParseAdminToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateAdminToken("ops", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}

	_, err = ParseAdminToken(tok, secret)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected jwt.ErrTokenExpired in chain, got %v", err)
	}
}

func TestParseAdminToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAdminToken("ops", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}

	if _, err := ParseAdminToken(tok, []byte("wrong-secret")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAdminToken_MissingRole(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseAdminToken(tok, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAdminToken_NoExpiry(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: RoleAdmin}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseAdminToken(tok, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAdminToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             RoleAdmin,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseAdminToken(tok, []byte("secret")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAdminToken_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseAdminToken("not-a-jwt", []byte("secret")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
