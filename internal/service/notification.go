package service

import (
	"context"
	"encoding/json"
	"math"

	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type emailHistoryStore interface {
	UpdateStatus(ctx context.Context, messageID, email, status string, providerResponse []byte) error
	ListByEmail(ctx context.Context, email string, limit, offset int) ([]model.EmailHistory, int64, error)
}

// NotificationService applies provider delivery events to the mail history
// and serves that history back.
type NotificationService struct {
	history emailHistoryStore
}

func NewNotificationService(history emailHistoryStore) *NotificationService {
	return &NotificationService{history: history}
}

// HandleDeliveryEvent records what the mail provider reported for a message.
// Unknown event names are rejected; unknown messages come back not found.
func (s *NotificationService) HandleDeliveryEvent(ctx context.Context, event *dto.DeliveryEvent) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "HandleDeliveryEvent")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, ok := constants.MailEventStatuses[event.Event]; !ok {
		logger.WarnWithContext(ctx, "Unknown mail delivery event").
			String("event", event.Event).
			String("message_id", event.MessageID).
			Log()
		return apperrors.ErrInvalidInput
	}

	var providerResponse []byte
	if len(event.Payload) > 0 {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			return apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		providerResponse = data
	}

	if err := s.history.UpdateStatus(ctx, event.MessageID, event.Email, event.Event, providerResponse); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrResourceNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return nil
}

// History lists the delivery history for a recipient, newest first.
func (s *NotificationService) History(ctx context.Context, email string, limit, offset int) ([]dto.EmailHistoryResponse, int64, int, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "History")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	histories, total, err := s.history.ListByEmail(ctx, email, limit, offset)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	pageTotal := 0
	if limit > 0 {
		pageTotal = int(math.Ceil(float64(total) / float64(limit)))
	}

	res := make([]dto.EmailHistoryResponse, 0, len(histories))
	for _, h := range histories {
		res = append(res, dto.EmailHistoryResponse{
			ID:        h.ID,
			EmailType: h.EmailType,
			MessageID: h.MessageID,
			Status:    h.Status,
			Email:     h.Email,
			FromEmail: h.FromEmail,
			CreatedAt: h.CreatedAt,
		})
	}

	return res, total, pageTotal, nil
}
