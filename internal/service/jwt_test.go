package service

import (
	"testing"
	"time"

	"github.com/prep-study/pronto/internal/dto"
)

func testJWT() *JWTService {
	return NewJWTService("test-secret", 15*time.Minute, 168*time.Hour)
}

func testTokenUser() *dto.UserResponse {
	return &dto.UserResponse{
		ID:        7,
		Username:  "student1",
		Email:     "student1@example.com",
		FirstName: "Stu",
		LastName:  "Dent",
	}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := testJWT()

	token, err := svc.GenerateToken(testTokenUser(), 1)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if got := (*claims)["user_id"].(float64); uint(got) != 7 {
		t.Errorf("Expected user_id 7, got %v", got)
	}
	if got := (*claims)["username"].(string); got != "student1" {
		t.Errorf("Expected username student1, got %q", got)
	}
	if got := (*claims)["token_version"].(float64); int(got) != 1 {
		t.Errorf("Expected token_version 1, got %v", got)
	}
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := testJWT().GenerateToken(testTokenUser(), 1)
	if err != nil {
		t.Fatal(err)
	}

	other := NewJWTService("other-secret", 15*time.Minute, 168*time.Hour)
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("Expected a token signed with another secret to be rejected")
	}
}

func TestJWTService_ValidateTokenWithVersion(t *testing.T) {
	svc := testJWT()
	token, err := svc.GenerateToken(testTokenUser(), 3)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ValidateTokenWithVersion(token, 3); err != nil {
		t.Errorf("Expected matching version to validate, got %v", err)
	}
	// A bumped version retires the token.
	if _, err := svc.ValidateTokenWithVersion(token, 4); err == nil {
		t.Error("Expected a version mismatch to be rejected")
	}
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	svc := testJWT()

	token, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken returned error: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a non-empty refresh token")
	}

	other, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	if token == other {
		t.Error("Expected refresh tokens to be unique")
	}

	hash, err := svc.HashRefreshToken(token)
	if err != nil {
		t.Fatalf("HashRefreshToken returned error: %v", err)
	}
	if hash == token {
		t.Error("Refresh token stored unhashed")
	}
	if !svc.VerifyRefreshToken(token, hash) {
		t.Error("Expected the token to verify against its hash")
	}
	if svc.VerifyRefreshToken(other, hash) {
		t.Error("Expected a different token to fail verification")
	}
}

func TestJWTService_Expiries(t *testing.T) {
	svc := testJWT()
	if got := svc.AccessExpirySeconds(); got != 900 {
		t.Errorf("Expected 900 seconds, got %d", got)
	}
	if got := svc.RefreshExpiry(); got != 168*time.Hour {
		t.Errorf("Expected 168h, got %v", got)
	}
}
