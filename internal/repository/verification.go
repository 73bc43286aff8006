package repository

import (
	"context"
	"time"

	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

// VerificationRepository persists the three one-time-code request kinds:
// account verification, password reset and email change.
type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Account verification

func (r *VerificationRepository) CreateAccountVerification(ctx context.Context, req *model.AccountVerificationRequest) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CreateAccountVerification")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create account verification request").
			Uint("user_id", req.UserID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Account verification request created").
		Uint("user_id", req.UserID).
		Log()

	return nil
}

// GetAccountVerificationByCode loads the newest request for the code,
// consumed or not. The caller distinguishes expired from already-used.
func (r *VerificationRepository) GetAccountVerificationByCode(ctx context.Context, code string) (*model.AccountVerificationRequest, error) {
	var req model.AccountVerificationRequest
	result := r.db.WithContext(ctx).Preload("User").
		Where("verification_code = ?", code).
		Order("created_at DESC").
		First(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

// GetLatestAccountVerificationByUser returns the most recent request for the
// user regardless of state.
func (r *VerificationRepository) GetLatestAccountVerificationByUser(ctx context.Context, userID uint) (*model.AccountVerificationRequest, error) {
	var req model.AccountVerificationRequest
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

// ConsumeAccountVerification marks the request used exactly once. Returns
// gorm.ErrRecordNotFound when another request already consumed it.
func (r *VerificationRepository) ConsumeAccountVerification(ctx context.Context, id uint, at time.Time) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ConsumeAccountVerification")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.AccountVerificationRequest{}).
		Where("id = ? AND is_account_verified = ?", id, false).
		Updates(map[string]interface{}{
			"is_account_verified": true,
			"account_verified_at": at,
		})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to consume account verification request").
			Uint("request_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Password reset

func (r *VerificationRepository) CreatePasswordReset(ctx context.Context, req *model.PasswordResetRequest) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CreatePasswordReset")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create password reset request").
			Uint("user_id", req.UserID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Password reset request created").
		Uint("user_id", req.UserID).
		Log()

	return nil
}

func (r *VerificationRepository) GetPasswordResetByCode(ctx context.Context, code string) (*model.PasswordResetRequest, error) {
	var req model.PasswordResetRequest
	result := r.db.WithContext(ctx).Preload("User").
		Where("verification_code = ?", code).
		Order("created_at DESC").
		First(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

func (r *VerificationRepository) ConsumePasswordReset(ctx context.Context, id uint, at time.Time) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ConsumePasswordReset")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.PasswordResetRequest{}).
		Where("id = ? AND is_password_reset = ?", id, false).
		Updates(map[string]interface{}{
			"is_password_reset": true,
			"password_reset_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Email change

func (r *VerificationRepository) CreateEmailChange(ctx context.Context, req *model.EmailChangeRequest) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CreateEmailChange")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create email change request").
			Uint("user_id", req.UserID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Email change request created").
		Uint("user_id", req.UserID).
		Log()

	return nil
}

// GetValidEmailChange returns a still-consumable request for the same
// (user, new_email) pair, if one exists.
func (r *VerificationRepository) GetValidEmailChange(ctx context.Context, userID uint, newEmail string, now time.Time) (*model.EmailChangeRequest, error) {
	var req model.EmailChangeRequest
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND new_email = ? AND is_email_changed = ? AND expires_at > ?",
			userID, newEmail, false, now).
		Order("created_at DESC").
		First(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

func (r *VerificationRepository) GetEmailChangeByUserAndCode(ctx context.Context, userID uint, code string) (*model.EmailChangeRequest, error) {
	var req model.EmailChangeRequest
	result := r.db.WithContext(ctx).Preload("User").
		Where("user_id = ? AND verification_code = ?", userID, code).
		First(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

func (r *VerificationRepository) ConsumeEmailChange(ctx context.Context, id uint, at time.Time) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ConsumeEmailChange")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.EmailChangeRequest{}).
		Where("id = ? AND is_email_changed = ?", id, false).
		Updates(map[string]interface{}{
			"is_email_changed": true,
			"email_changed_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
