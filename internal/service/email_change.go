package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prep-study/pronto/config"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/mailer"
	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type emailChangeUserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateEmail(ctx context.Context, id uint, email string) error
}

type emailChangeStore interface {
	CreateEmailChange(ctx context.Context, req *model.EmailChangeRequest) error
	GetValidEmailChange(ctx context.Context, userID uint, newEmail string, now time.Time) (*model.EmailChangeRequest, error)
	GetEmailChangeByUserAndCode(ctx context.Context, userID uint, code string) (*model.EmailChangeRequest, error)
	ConsumeEmailChange(ctx context.Context, id uint, at time.Time) error
}

// EmailChangeService moves an account to a new address once the code mailed
// to that address comes back.
type EmailChangeService struct {
	users    emailChangeUserStore
	requests emailChangeStore
	mail     mailer.Dispatcher
	cfg      *config.Config
	now      func() time.Time
}

func NewEmailChangeService(users emailChangeUserStore, requests emailChangeStore, mail mailer.Dispatcher, cfg *config.Config) *EmailChangeService {
	return &EmailChangeService{
		users:    users,
		requests: requests,
		mail:     mail,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Request mails a verification code to the new address. Asking again for the
// same address while a code is still valid re-sends that code instead of
// minting another.
func (s *EmailChangeService) Request(ctx context.Context, userID uint, newEmail string) (*dto.EmailChangeResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Request")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	newEmail = strings.ToLower(strings.TrimSpace(newEmail))

	exists, err := s.users.EmailExists(ctx, newEmail)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		return nil, apperrors.ErrEmailRegistered
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	req, err := s.requests.GetValidEmailChange(ctx, userID, newEmail, s.now())
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}

		code, err := GenerateCode(s.cfg.Verification.CodeLength)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		req = &model.EmailChangeRequest{
			UserID:           userID,
			NewEmail:         newEmail,
			VerificationCode: code,
			ExpiresAt:        s.now().Add(s.cfg.Verification.Window),
		}
		if err := s.requests.CreateEmailChange(ctx, req); err != nil {
			logger.ErrorWithContext(ctx, "Failed to create email change request").
				Uint("user_id", userID).
				Err(err).
				Log()
			return nil, apperrors.WrapError(apperrors.ErrEmailChangeNotCreated, err)
		}
	}

	job := mailer.MailJob{
		MessageID: uuid.NewString(),
		To:        newEmail,
		Subject:   constants.EmailChangeMailSubject,
		EmailType: constants.EmailChangeMailTag,
		Header:    constants.EmailChangeMailHeader,
		Message:   constants.EmailChangeMailMessage,
		Name:      user.FullName(),
		Code:      req.VerificationCode,
		QueuedAt:  s.now(),
	}
	if err := s.mail.Dispatch(ctx, job); err != nil {
		logger.ErrorWithContext(ctx, "Failed to queue email change mail").
			Uint("user_id", userID).
			String("message_id", job.MessageID).
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "Email change requested").
		Uint("user_id", userID).
		Log()

	return &dto.EmailChangeResponse{
		NewEmail:  req.NewEmail,
		ExpiresAt: req.ExpiresAt,
	}, nil
}

// Confirm consumes the code and swaps the account's address. The code is
// scoped to the requesting user.
func (s *EmailChangeService) Confirm(ctx context.Context, userID uint, code string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Confirm")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if code == "" {
		return apperrors.ErrCodeParamRequired
	}

	req, err := s.requests.GetEmailChangeByUserAndCode(ctx, userID, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrInvalidOrExpiredCode
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !req.IsValid(s.now()) {
		return apperrors.ErrInvalidOrExpiredCode
	}

	if err := s.requests.ConsumeEmailChange(ctx, req.ID, s.now()); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrInvalidOrExpiredCode
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateEmail(ctx, userID, req.NewEmail); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Email changed successfully").
		Uint("user_id", userID).
		Log()

	return nil
}
