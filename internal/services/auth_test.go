package services

import (
	"errors"
	"testing"

	"github.com/teamboardhq/teamboard/backend/internal/config"
	"github.com/teamboardhq/teamboard/backend/internal/models"
	"github.com/teamboardhq/teamboard/backend/internal/utils"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	utils.SetJWTSecret("test-secret")
	return NewAuthService(db, &config.JWTConfig{Secret: "test-secret", ExpireHour: 24})
}

func TestRegister_NormalizesEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register(&RegisterRequest{
		Email:    "  Alice@Example.COM ",
		Password: "password123",
		Name:     " Alice ",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, expected lowercased and trimmed", user.Email)
	}
	if user.Name != "Alice" {
		t.Errorf("Name = %q, expected trimmed", user.Name)
	}
	if user.Password == "password123" {
		t.Error("password must be stored hashed")
	}
	if user.Role != "user" {
		t.Errorf("Role = %q, expected user", user.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	if _, err := svc.Register(&RegisterRequest{Email: "a@example.com", Password: "password123"}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := svc.Register(&RegisterRequest{Email: "A@example.com", Password: "password456"})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for duplicate email, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	if _, err := svc.Register(&RegisterRequest{Email: "a@example.com", Password: "password123"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := svc.Login(&LoginRequest{Email: "a@example.com", Password: "password123"}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("expected both tokens to be issued")
	}
	if result.User.LastLogin == nil {
		t.Error("expected LastLogin to be set")
	}

	claims, err := utils.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Email != "a@example.com" {
		t.Errorf("token email = %q", claims.Email)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	if _, err := svc.Register(&RegisterRequest{Email: "a@example.com", Password: "password123"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Email: "a@example.com", Password: "nope"}, "", ""); err == nil {
		t.Error("expected login failure for wrong password")
	}
	if _, err := svc.Login(&LoginRequest{Email: "missing@example.com", Password: "password123"}, "", ""); err == nil {
		t.Error("expected login failure for unknown email")
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	if _, err := svc.Register(&RegisterRequest{Email: "a@example.com", Password: "password123"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	login, err := svc.Login(&LoginRequest{Email: "a@example.com", Password: "password123"}, "", "")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	rotated, err := svc.Refresh(login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rotated.RefreshToken == login.RefreshToken {
		t.Error("refresh must issue a new token")
	}

	// The old token is revoked and linked to its replacement; replaying
	// it fails.
	if _, err := svc.Refresh(login.RefreshToken, "", ""); err == nil {
		t.Error("expected replayed refresh token to be rejected")
	}

	var old models.RefreshToken
	if err := db.Where("token_hash = ?", hashRefreshToken(login.RefreshToken)).First(&old).Error; err != nil {
		t.Fatalf("load old token: %v", err)
	}
	if old.RevokedAt == nil {
		t.Error("old token should be revoked")
	}
	if old.ReplacedByTokenID == nil {
		t.Error("old token should link to its replacement")
	}
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register(&RegisterRequest{Email: "a@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err = svc.ChangePassword(user.ID, "wrong", "newpassword1")
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError for wrong old password, got %v", err)
	}

	if err := svc.ChangePassword(user.ID, "password123", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := svc.Login(&LoginRequest{Email: "a@example.com", Password: "newpassword1"}, "", ""); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

func TestCreateAdminIfNotExists_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	var count int64
	db.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one admin, got %d", count)
	}
}
