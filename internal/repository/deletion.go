package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type DeletionRepository struct {
	db *gorm.DB
}

func NewDeletionRepository(db *gorm.DB) *DeletionRepository {
	return &DeletionRepository{db: db}
}

func (r *DeletionRepository) Create(ctx context.Context, req *model.DeleteUserAccountRequest) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create account deletion request").
			Uint("user_id", req.UserID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Account deletion request created").
		Uint("user_id", req.UserID).
		String("identifier", req.Identifier.String()).
		Log()

	return nil
}

func (r *DeletionRepository) GetByIdentifier(ctx context.Context, identifier uuid.UUID) (*model.DeleteUserAccountRequest, error) {
	var req model.DeleteUserAccountRequest
	result := r.db.WithContext(ctx).Preload("User").
		Where("identifier = ?", identifier).
		First(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

func (r *DeletionRepository) GetByID(ctx context.Context, id uint) (*model.DeleteUserAccountRequest, error) {
	var req model.DeleteUserAccountRequest
	result := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

// GetPendingByUser returns requests that are neither cancelled nor executed.
func (r *DeletionRepository) GetPendingByUser(ctx context.Context, userID uint) ([]model.DeleteUserAccountRequest, error) {
	var reqs []model.DeleteUserAccountRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_logged_in = ? AND is_account_deleted = ?", userID, false, false).
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// CancelPendingByUser bulk-cancels every pending request for the user. Login
// activity invokes this; an executed request is never touched.
func (r *DeletionRepository) CancelPendingByUser(ctx context.Context, userID uint) (int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CancelPendingByUser")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.DeleteUserAccountRequest{}).
		Where("user_id = ? AND is_logged_in = ? AND is_account_deleted = ?", userID, false, false).
		Update("is_logged_in", true)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to cancel pending deletion requests").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		logger.InfoWithContext(ctx, "Pending deletion requests cancelled by login").
			Uint("user_id", userID).
			Int64("cancelled_count", result.RowsAffected).
			Log()
	}

	return result.RowsAffected, nil
}

// Execute flips the user's deleted flag and marks the request executed in one
// transaction, so a crash can never delete the account without recording it.
func (r *DeletionRepository) Execute(ctx context.Context, requestID, userID uint, at time.Time) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Execute")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userResult := tx.Model(&model.User{}).
			Where("id = ? AND is_deleted = ?", userID, false).
			Update("is_deleted", true)
		if userResult.Error != nil {
			return userResult.Error
		}
		if userResult.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		reqResult := tx.Model(&model.DeleteUserAccountRequest{}).
			Where("id = ? AND is_account_deleted = ?", requestID, false).
			Updates(map[string]interface{}{
				"is_account_deleted": true,
				"confirm_at":         at,
			})
		if reqResult.Error != nil {
			return reqResult.Error
		}
		if reqResult.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to execute account deletion").
			Uint("request_id", requestID).
			Uint("user_id", userID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Account deletion executed").
		Uint("request_id", requestID).
		Uint("user_id", userID).
		Log()

	return nil
}
