package service

import (
	"context"
	"strings"
	"time"

	"github.com/prep-study/pronto/config"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type authUserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByAuthCode(ctx context.Context, authCode string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uint) error
	UpdateRefreshToken(ctx context.Context, id uint, refreshTokenHash string, expiresAt *time.Time) error
	FindByRefreshToken(ctx context.Context, refreshToken string) (*model.User, error)
	UpdateTokenVersion(ctx context.Context, id uint, newVersion int) error
}

type deletionCanceller interface {
	CancelPendingByUser(ctx context.Context, userID uint) (int64, error)
}

// sessionRecorder is how login activity reaches the session recorder.
type sessionRecorder interface {
	RecordLogin(ctx context.Context, userID uint, clientIP, userAgent, token string) error
	CloseSessions(ctx context.Context, userID uint) error
}

// AuthService authenticates users and manages their token pair.
type AuthService struct {
	users     authUserStore
	deletions deletionCanceller
	sessions  sessionRecorder
	jwt       *JWTService
	badge     config.BadgeConfig
	now       func() time.Time
}

func NewAuthService(users authUserStore, deletions deletionCanceller, sessions sessionRecorder, jwt *JWTService, badge config.BadgeConfig) *AuthService {
	return &AuthService{
		users:     users,
		deletions: deletions,
		sessions:  sessions,
		jwt:       jwt,
		badge:     badge,
		now:       time.Now,
	}
}

// Login authenticates with either username (or email) and password, or a
// short auth code on its own. A successful login cancels every pending
// deletion request the account has.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, clientIP, userAgent string) (*dto.LoginResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Login")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.resolveUser(ctx, req)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		logger.InfoWithContext(ctx, "Login rejected for inactive account").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInactivatedAccount
	}

	// Login activity withdraws any pending account deletion.
	if _, err := s.deletions.CancelPendingByUser(ctx, user.ID); err != nil {
		logger.ErrorWithContext(ctx, "Failed to cancel pending deletion requests on login").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.WarnWithContext(ctx, "Failed to update last login timestamp").
			Uint("user_id", user.ID).
			Err(err).
			Log()
	}

	userResponse := toUserResponse(user, s.badge)

	token, refreshToken, err := s.issueTokenPair(ctx, user, &userResponse, user.TokenVersion)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.RecordLogin(ctx, user.ID, clientIP, userAgent, token); err != nil {
		logger.WarnWithContext(ctx, "Failed to record login session").
			Uint("user_id", user.ID).
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "User logged in successfully").
		Uint("user_id", user.ID).
		String("username", user.Username).
		Log()

	return &dto.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwt.AccessExpirySeconds(),
		User:         userResponse,
	}, nil
}

func (s *AuthService) resolveUser(ctx context.Context, req *dto.LoginRequest) (*model.User, error) {
	switch {
	case req.AuthCode != "":
		user, err := s.users.GetByAuthCode(ctx, req.AuthCode)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.ErrInvalidAuthCode
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		return user, nil

	case req.Username != "" && req.Password != "":
		var user *model.User
		var err error
		// An address in the username field is treated as an email login.
		if strings.Contains(req.Username, "@") {
			user, err = s.users.GetByEmail(ctx, strings.ToLower(req.Username))
		} else {
			user, err = s.users.GetByUsername(ctx, req.Username)
		}
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.ErrInvalidCredentials
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if !checkPassword(user.Password, req.Password) {
			logger.WarnWithContext(ctx, "Login failed: incorrect password").
				Uint("user_id", user.ID).
				Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		return user, nil

	default:
		return nil, apperrors.ErrLoginFieldsRequired
	}
}

// issueTokenPair generates the access token and a rotated refresh token, and
// stores the refresh token hash.
func (s *AuthService) issueTokenPair(ctx context.Context, user *model.User, userResponse *dto.UserResponse, tokenVersion int) (string, string, error) {
	token, err := s.jwt.GenerateToken(userResponse, tokenVersion)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to generate access token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken()
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshTokenHash, err := s.jwt.HashRefreshToken(refreshToken)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	expires := s.now().Add(s.jwt.RefreshExpiry())
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshTokenHash, &expires); err != nil {
		logger.ErrorWithContext(ctx, "Failed to store refresh token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return token, refreshToken, nil
}

// RefreshToken rotates the token pair: the old refresh token is spent, the
// token version is bumped so older access tokens die with it.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "RefreshToken")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Invalid refresh token").
			Err(err).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if user.RefreshTokenExpires != nil && user.RefreshTokenExpires.Before(s.now()) {
		logger.WarnWithContext(ctx, "Refresh token expired").
			Uint("user_id", user.ID).
			Log()
		_ = s.users.UpdateRefreshToken(ctx, user.ID, "", nil)
		return nil, apperrors.ErrTokenExpired
	}

	newVersion := user.TokenVersion + 1
	if err := s.users.UpdateTokenVersion(ctx, user.ID, newVersion); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	userResponse := toUserResponse(user, s.badge)

	token, newRefreshToken, err := s.issueTokenPair(ctx, user, &userResponse, newVersion)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Token refreshed successfully").
		Uint("user_id", user.ID).
		Int("new_token_version", newVersion).
		Log()

	return &dto.RefreshTokenResponse{
		Token:        token,
		RefreshToken: newRefreshToken,
		ExpiresIn:    s.jwt.AccessExpirySeconds(),
		User:         userResponse,
	}, nil
}

// Logout revokes every outstanding token and closes open sessions.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Logout")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateTokenVersion(ctx, userID, user.TokenVersion+1); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateRefreshToken(ctx, userID, "", nil); err != nil {
		logger.WarnWithContext(ctx, "Failed to clear refresh token on logout").
			Uint("user_id", userID).
			Err(err).
			Log()
	}

	if err := s.sessions.CloseSessions(ctx, userID); err != nil {
		logger.WarnWithContext(ctx, "Failed to close sessions on logout").
			Uint("user_id", userID).
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "User logged out successfully").
		Uint("user_id", userID).
		Log()

	return nil
}
