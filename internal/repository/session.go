package repository

import (
	"context"
	"time"

	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindEnvironment looks for an exact fingerprint match for the user.
func (r *SessionRepository) FindEnvironment(ctx context.Context, env *model.UserEnvironmentDetails) (*model.UserEnvironmentDetails, error) {
	var found model.UserEnvironmentDetails
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND os = ? AND os_version = ? AND ip_address = ? AND browser = ? AND browser_version = ? AND device_type = ? AND device = ?",
			env.UserID, env.OS, env.OSVersion, env.IPAddress,
			env.Browser, env.BrowserVersion, env.DeviceType, env.Device).
		First(&found)
	if result.Error != nil {
		return nil, result.Error
	}
	return &found, nil
}

func (r *SessionRepository) CreateEnvironment(ctx context.Context, env *model.UserEnvironmentDetails) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CreateEnvironment")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := r.db.WithContext(ctx).Create(env).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user environment").
			Uint("user_id", env.UserID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "New login environment recorded").
		Uint("user_id", env.UserID).
		String("device_type", env.DeviceType).
		String("browser", env.Browser).
		Log()

	return nil
}

// UpsertSession refreshes the session row for the (user, environment) pair,
// creating it on first login from that environment.
func (r *SessionRepository) UpsertSession(ctx context.Context, userID, environmentID uint, token string, loginAt time.Time) (*model.UserSession, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpsertSession")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var session model.UserSession
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND environment_id = ?", userID, environmentID).
		First(&session)

	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			return nil, result.Error
		}

		session = model.UserSession{
			UserID:        userID,
			EnvironmentID: environmentID,
			Token:         token,
			LastLogin:     loginAt,
		}
		if err := r.db.WithContext(ctx).Create(&session).Error; err != nil {
			logger.ErrorWithContext(ctx, "Failed to create user session").
				Uint("user_id", userID).
				Err(err).
				Log()
			return nil, err
		}

		logger.InfoWithContext(ctx, "User session created").
			Uint("user_id", userID).
			Uint("environment_id", environmentID).
			Log()

		return &session, nil
	}

	updates := map[string]interface{}{
		"token":       token,
		"last_login":  loginAt,
		"last_logout": nil,
	}
	if err := r.db.WithContext(ctx).Model(&session).Updates(updates).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to update user session").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "User session refreshed").
		Uint("user_id", userID).
		Uint("environment_id", environmentID).
		Log()

	return &session, nil
}

// CloseSessions stamps last_logout on every open session for the user.
func (r *SessionRepository) CloseSessions(ctx context.Context, userID uint, at time.Time) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CloseSessions")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.UserSession{}).
		Where("user_id = ? AND last_logout IS NULL", userID).
		Update("last_logout", at)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to close user sessions").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

// ListByUser returns the user's sessions with their environments.
func (r *SessionRepository) ListByUser(ctx context.Context, userID uint) ([]model.UserSession, error) {
	var sessions []model.UserSession
	err := r.db.WithContext(ctx).Preload("Environment").
		Where("user_id = ?", userID).
		Order("last_login DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
