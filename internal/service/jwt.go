package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prep-study/pronto/internal/dto"
	"golang.org/x/crypto/bcrypt"
)

type JWTService struct {
	secretKey     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewJWTService(secretKey string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secretKey:     secretKey,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateToken creates a short-lived access token for the user.
func (s *JWTService) GenerateToken(user *dto.UserResponse, tokenVersion int) (string, error) {
	claims := jwt.MapClaims{
		"user_id":       user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"token_version": tokenVersion,
		"exp":           time.Now().Add(s.accessExpiry).Unix(),
		"iat":           time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// AccessExpirySeconds is what handlers report as expires_in.
func (s *JWTService) AccessExpirySeconds() int {
	return int(s.accessExpiry.Seconds())
}

// RefreshExpiry returns the refresh token lifetime.
func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// GenerateRefreshToken creates a secure refresh token
func (s *JWTService) GenerateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(bytes), nil
}

// HashRefreshToken securely hashes a refresh token
func (s *JWTService) HashRefreshToken(refreshToken string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash refresh token: %w", err)
	}
	return string(hash), nil
}

// VerifyRefreshToken verifies a refresh token against its hash
func (s *JWTService) VerifyRefreshToken(refreshToken, hashedToken string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(refreshToken))
	return err == nil
}

// ValidateToken validates the JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}

// ValidateTokenWithVersion validates the token and rejects it when its
// version no longer matches the user's current one. Bumping the version
// revokes every token issued before the bump.
func (s *JWTService) ValidateTokenWithVersion(tokenString string, expectedVersion int) (*jwt.MapClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	tokenVersion, ok := (*claims)["token_version"]
	if !ok {
		return nil, errors.New("token version missing")
	}
	versionFloat, ok := tokenVersion.(float64)
	if !ok {
		return nil, errors.New("invalid token version format")
	}
	if int(versionFloat) != expectedVersion {
		return nil, errors.New("token version mismatch")
	}

	return claims, nil
}
