package service

import (
	"context"
	"strings"
	"time"

	"github.com/mssola/useragent"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type sessionStore interface {
	FindEnvironment(ctx context.Context, env *model.UserEnvironmentDetails) (*model.UserEnvironmentDetails, error)
	CreateEnvironment(ctx context.Context, env *model.UserEnvironmentDetails) error
	UpsertSession(ctx context.Context, userID, environmentID uint, token string, loginAt time.Time) (*model.UserSession, error)
	CloseSessions(ctx context.Context, userID uint, at time.Time) error
	ListByUser(ctx context.Context, userID uint) ([]model.UserSession, error)
}

// SessionService records where logins come from. Environments are
// deduplicated by exact fingerprint match; each (user, environment) pair
// keeps a single session row.
type SessionService struct {
	sessions sessionStore
	now      func() time.Time
}

func NewSessionService(sessions sessionStore) *SessionService {
	return &SessionService{
		sessions: sessions,
		now:      time.Now,
	}
}

// RecordLogin parses the user agent into an environment fingerprint and
// refreshes the session for it.
func (s *SessionService) RecordLogin(ctx context.Context, userID uint, clientIP, userAgent, token string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "RecordLogin")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	env := parseEnvironment(userID, clientIP, userAgent)

	found, err := s.sessions.FindEnvironment(ctx, env)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if err := s.sessions.CreateEnvironment(ctx, env); err != nil {
			return apperrors.WrapError(apperrors.ErrInternal, err)
		}
		found = env
	}

	if _, err := s.sessions.UpsertSession(ctx, userID, found.ID, token, s.now()); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.DebugWithContext(ctx, "Login session recorded").
		Uint("user_id", userID).
		Uint("environment_id", found.ID).
		String("device_type", found.DeviceType).
		Log()

	return nil
}

// CloseSessions stamps a logout time on every open session of the user.
func (s *SessionService) CloseSessions(ctx context.Context, userID uint) error {
	if err := s.sessions.CloseSessions(ctx, userID, s.now()); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

// ListByUser returns the user's sessions, newest login first.
func (s *SessionService) ListByUser(ctx context.Context, userID uint) ([]dto.SessionResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByUser")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		item := dto.SessionResponse{
			ID:         session.ID,
			LastLogin:  session.LastLogin,
			LastLogout: session.LastLogout,
		}
		if session.Environment != nil {
			item.OS = session.Environment.OS
			item.OSVersion = session.Environment.OSVersion
			item.IPAddress = session.Environment.IPAddress
			item.Browser = session.Environment.Browser
			item.BrowserVersion = session.Environment.BrowserVersion
			item.DeviceType = session.Environment.DeviceType
			item.Device = session.Environment.Device
		}
		res = append(res, item)
	}

	return res, nil
}

// parseEnvironment extracts the login fingerprint from the raw user agent.
func parseEnvironment(userID uint, clientIP, rawUserAgent string) *model.UserEnvironmentDetails {
	ua := useragent.New(rawUserAgent)

	osInfo := ua.OSInfo()
	browser, browserVersion := ua.Browser()

	return &model.UserEnvironmentDetails{
		UserID:         userID,
		OS:             osInfo.Name,
		OSVersion:      osInfo.Version,
		IPAddress:      clientIP,
		Browser:        browser,
		BrowserVersion: browserVersion,
		DeviceType:     deviceTypeOf(ua, rawUserAgent),
		Device:         ua.Platform(),
	}
}

func deviceTypeOf(ua *useragent.UserAgent, rawUserAgent string) string {
	switch {
	case ua.Bot():
		return model.DeviceBot
	case isTablet(ua, rawUserAgent):
		return model.DeviceTablet
	case ua.Mobile():
		return model.DeviceMobile
	default:
		return model.DevicePC
	}
}

// isTablet covers the agents the mobile flag alone cannot separate from
// phones.
func isTablet(ua *useragent.UserAgent, rawUserAgent string) bool {
	if strings.Contains(ua.Platform(), "iPad") {
		return true
	}
	lowered := strings.ToLower(rawUserAgent)
	return strings.Contains(lowered, "tablet") ||
		(strings.Contains(lowered, "android") && !strings.Contains(lowered, "mobile"))
}
