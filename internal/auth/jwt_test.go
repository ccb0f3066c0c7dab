package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAccessToken("user-123", RoleUser)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %q", claims.Subject)
	}
	if claims.Type != TokenTypeAccess {
		t.Errorf("expected access token type, got %q", claims.Type)
	}
	if claims.Role != RoleUser {
		t.Errorf("expected user role, got %q", claims.Role)
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateRefreshToken("user-123")
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Type != TokenTypeRefresh {
		t.Errorf("expected refresh token type, got %q", claims.Type)
	}
	if claims.Role != "" {
		t.Errorf("refresh tokens must not carry a role, got %q", claims.Role)
	}
}

func TestGenerateEmptyUserID(t *testing.T) {
	svc := NewJWTService("test-secret")

	if _, err := svc.GenerateAccessToken("", RoleUser); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}
	if _, err := svc.GenerateRefreshToken(""); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret")
	other := NewJWTService("different-secret")

	token, err := svc.GenerateAccessToken("user-123", RoleUser)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	// Hand-craft a token expired beyond the leeway window.
	now := time.Now().Add(-2 * time.Hour)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Type: TokenTypeAccess,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := svc.ValidateToken(signed); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateWrongSigningMethod(t *testing.T) {
	svc := NewJWTService("test-secret")

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		Type:             TokenTypeAccess,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := svc.ValidateToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for HS512 token, got %v", err)
	}
}

func TestSecretRotation(t *testing.T) {
	oldSvc := NewJWTService("old-secret")
	token, err := oldSvc.GenerateAccessToken("user-123", RoleUser)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	// After rotation, tokens signed with the previous secret still validate.
	rotated := NewJWTServiceWithRotation("new-secret", "old-secret")
	claims, err := rotated.ValidateToken(token)
	if err != nil {
		t.Fatalf("expected previous-secret token to validate, got %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %q", claims.Subject)
	}

	// New tokens are signed with the new secret.
	newToken, err := rotated.GenerateAccessToken("user-456", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if _, err := NewJWTService("new-secret").ValidateToken(newToken); err != nil {
		t.Errorf("expected new token to validate with new secret, got %v", err)
	}
}

func TestOwnerOrAdmin(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		role    string
		ownerID string
		want    bool
	}{
		{"owner matches", "user-1", RoleUser, "user-1", true},
		{"admin overrides", "user-2", RoleAdmin, "user-1", true},
		{"stranger denied", "user-2", RoleUser, "user-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: tt.subject},
				Role:             tt.role,
			}
			if got := c.OwnerOrAdmin(tt.ownerID); got != tt.want {
				t.Errorf("OwnerOrAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}
