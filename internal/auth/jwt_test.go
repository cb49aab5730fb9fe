package auth

import (
	"testing"

	"crm-backend/internal/config"
	"crm-backend/internal/models"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "crm-backend"
	return cfg
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager(testConfig())
	user := &models.User{ID: 42, Email: "owner@example.com"}

	token, err := manager.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id: got %d, want 42", claims.UserID)
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("email: got %q", claims.Email)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager(testConfig())
	token, err := manager.GenerateToken(&models.User{ID: 1, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	other := testConfig()
	other.JWT.Secret = "different-secret"
	if _, err := NewJWTManager(other).ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	manager := NewJWTManager(testConfig())
	if _, err := manager.ValidateToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
