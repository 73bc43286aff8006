package repository

import (
	"context"

	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type EmailHistoryRepository struct {
	db *gorm.DB
}

func NewEmailHistoryRepository(db *gorm.DB) *EmailHistoryRepository {
	return &EmailHistoryRepository{db: db}
}

func (r *EmailHistoryRepository) Create(ctx context.Context, history *model.EmailHistory) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := r.db.WithContext(ctx).Create(history).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to record email history").
			String("email", history.Email).
			String("email_type", history.EmailType).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Email history recorded").
		String("email", history.Email).
		String("message_id", history.MessageID).
		String("status", history.Status).
		Log()

	return nil
}

// UpdateStatus applies a provider delivery event to the matching history row.
func (r *EmailHistoryRepository) UpdateStatus(ctx context.Context, messageID, email, status string, providerResponse []byte) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateStatus")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	updates := map[string]interface{}{"status": status}
	if len(providerResponse) > 0 {
		updates["provider_response"] = providerResponse
	}

	result := r.db.WithContext(ctx).Model(&model.EmailHistory{}).
		Where("message_id = ? AND email = ?", messageID, email).
		Updates(updates)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update email delivery status").
			String("message_id", messageID).
			String("email", email).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Email delivery status updated").
		String("message_id", messageID).
		String("email", email).
		String("status", status).
		Log()

	return nil
}

// ListByEmail returns the delivery history for a recipient, newest first.
func (r *EmailHistoryRepository) ListByEmail(ctx context.Context, email string, limit, offset int) ([]model.EmailHistory, int64, error) {
	var histories []model.EmailHistory
	var total int64

	query := r.db.WithContext(ctx).Model(&model.EmailHistory{}).Where("email = ?", email)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&histories).Error; err != nil {
		return nil, 0, err
	}

	return histories, total, nil
}
