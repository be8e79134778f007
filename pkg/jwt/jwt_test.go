package jwt

import (
	"testing"
	"time"

	"pubudu-echanneling/config"

	"github.com/google/uuid"
)

func newTestService(access time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  access,
		RefreshExpiry: time.Hour,
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestService(15 * time.Minute)
	sub := Subject{UserID: uuid.New(), Username: "Kamal_P", RoleID: 4}

	token, tokenID, err := svc.GenerateAccessToken(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokenID == "" {
		t.Fatal("expected a token id")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != sub.UserID || claims.Username != sub.Username || claims.RoleID != 4 {
		t.Errorf("claims do not match subject: %+v", claims)
	}
	if claims.TokenType != AccessToken {
		t.Errorf("expected access token, got %s", claims.TokenType)
	}
	if claims.TokenID != tokenID {
		t.Errorf("expected token id %s, got %s", tokenID, claims.TokenID)
	}
}

func TestRefreshTokenType(t *testing.T) {
	svc := newTestService(time.Minute)
	token, _, err := svc.GenerateRefreshToken(Subject{UserID: uuid.New(), RoleID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.TokenType != RefreshToken {
		t.Errorf("expected refresh token, got %s", claims.TokenType)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService(-time.Minute)
	token, _, err := svc.GenerateAccessToken(Subject{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, _ := newTestService(time.Minute).GenerateAccessToken(Subject{UserID: uuid.New()})

	other := NewJWTService(config.JWTConfig{Secret: "other", AccessExpiry: time.Minute})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}
