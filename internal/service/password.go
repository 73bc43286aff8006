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
	"github.com/prep-study/pronto/pkg/validation"
	"gorm.io/gorm"
)

type passwordUserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	UpdateTokenVersion(ctx context.Context, id uint, newVersion int) error
}

type passwordResetStore interface {
	CreatePasswordReset(ctx context.Context, req *model.PasswordResetRequest) error
	GetPasswordResetByCode(ctx context.Context, code string) (*model.PasswordResetRequest, error)
	ConsumePasswordReset(ctx context.Context, id uint, at time.Time) error
}

// verificationInitiator starts a fresh account verification; the set-password
// onboarding flow triggers one for accounts that have not verified yet.
type verificationInitiator interface {
	InitiateVerification(ctx context.Context, user *model.User) error
}

// PasswordService handles the reset flow (forgotten password, via mail code),
// the change flow (known current password) and the first-time set flow. Every
// precondition failure leaves the stored password untouched.
type PasswordService struct {
	users    passwordUserStore
	resets   passwordResetStore
	accounts verificationInitiator
	mail     mailer.Dispatcher
	cfg      *config.Config
	now      func() time.Time
}

func NewPasswordService(users passwordUserStore, resets passwordResetStore, accounts verificationInitiator, mail mailer.Dispatcher, cfg *config.Config) *PasswordService {
	return &PasswordService{
		users:    users,
		resets:   resets,
		accounts: accounts,
		mail:     mail,
		cfg:      cfg,
		now:      time.Now,
	}
}

// RequestReset creates a reset code and mails it. An unknown address is
// reported as such.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "RequestReset")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrIncorrectEmail
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	code, err := GenerateCode(s.cfg.Verification.CodeLength)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	req := &model.PasswordResetRequest{
		UserID:           user.ID,
		VerificationCode: code,
		ExpiresAt:        s.now().Add(s.cfg.Verification.Window),
	}
	if err := s.resets.CreatePasswordReset(ctx, req); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	job := mailer.MailJob{
		MessageID: uuid.NewString(),
		To:        user.Email,
		Subject:   constants.PasswordResetMailSubject,
		EmailType: constants.PasswordResetMailTag,
		Header:    constants.PasswordResetMailHeader,
		Message:   constants.PasswordResetMailMessage,
		Name:      user.FullName(),
		Code:      code,
		QueuedAt:  s.now(),
	}
	if err := s.mail.Dispatch(ctx, job); err != nil {
		logger.ErrorWithContext(ctx, "Failed to queue password reset mail").
			Uint("user_id", user.ID).
			String("message_id", job.MessageID).
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "Password reset requested").
		Uint("user_id", user.ID).
		Log()

	return nil
}

// ConfirmReset consumes the reset code and sets the new password. The code
// ladder mirrors account verification: invalid, expired and already-used are
// distinct failures.
func (s *PasswordService) ConfirmReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ConfirmReset")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if req.VerificationCode == "" {
		return apperrors.ErrCodeRequired
	}

	reset, err := s.resets.GetPasswordResetByCode(ctx, req.VerificationCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrCodeInvalid
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if reset.IsExpired(s.now()) {
		return apperrors.ErrCodeExpired
	}
	if reset.IsPasswordReset {
		return apperrors.ErrCodeAlreadyUsed
	}

	if req.Password1 != req.Password2 {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if violations := validation.PasswordPolicy(req.Password1, user.Username, user.Email); len(violations) > 0 {
		return apperrors.NewPasswordPolicyError(violations)
	}

	if err := s.resets.ConsumePasswordReset(ctx, reset.ID, s.now()); err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrCodeAlreadyUsed
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	hashedPassword, err := hashPassword(req.Password1)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.users.UpdatePassword(ctx, reset.UserID, hashedPassword); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.revokeTokens(ctx, reset.UserID)

	logger.InfoWithContext(ctx, "Password reset completed").
		Uint("user_id", reset.UserID).
		Log()

	return nil
}

// Change sets a new password for an authenticated user. Preconditions are
// checked in order: current password, confirmation match, difference from
// the current one.
func (s *PasswordService) Change(ctx context.Context, userID uint, req *dto.PasswordChangeRequest) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Change")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !checkPassword(user.Password, req.CurrentPassword) {
		logger.WarnWithContext(ctx, "Password change rejected: current password incorrect").
			Uint("user_id", userID).
			Log()
		return apperrors.ErrInvalidCurrentPassword
	}
	if req.Password1 != req.Password2 {
		return apperrors.ErrPasswordMismatch
	}
	if req.Password1 == req.CurrentPassword {
		return apperrors.ErrPasswordSameAsCurrent
	}
	if violations := validation.PasswordPolicy(req.Password1, user.Username, user.Email); len(violations) > 0 {
		return apperrors.NewPasswordPolicyError(violations)
	}

	hashedPassword, err := hashPassword(req.Password1)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.revokeTokens(ctx, userID)

	logger.InfoWithContext(ctx, "Password changed successfully").
		Uint("user_id", userID).
		Log()

	return nil
}

// Set establishes a first-time password for the onboarding flow. There is no
// current-password check since no prior password exists; accounts that have
// not verified their email yet get a fresh verification afterwards.
func (s *PasswordService) Set(ctx context.Context, req *dto.PasswordSetRequest) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Set")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrIncorrectEmail
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if req.Password1 != req.Password2 {
		return apperrors.ErrPasswordMismatch
	}
	if violations := validation.PasswordPolicy(req.Password1, user.Username, user.Email); len(violations) > 0 {
		return apperrors.NewPasswordPolicyError(violations)
	}

	hashedPassword, err := hashPassword(req.Password1)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.revokeTokens(ctx, user.ID)

	if !user.IsEmailVerified {
		if err := s.accounts.InitiateVerification(ctx, user); err != nil {
			// Resend-verification can recover; the password is already set.
			logger.ErrorWithContext(ctx, "Failed to initiate verification after password set").
				Uint("user_id", user.ID).
				Err(err).
				Log()
		}
	}

	logger.InfoWithContext(ctx, "Password set successfully").
		Uint("user_id", user.ID).
		Log()

	return nil
}

// revokeTokens bumps the token version so access tokens issued under the old
// password stop working. Failure is logged; the password change itself has
// already landed.
func (s *PasswordService) revokeTokens(ctx context.Context, userID uint) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to load user for token revocation").
			Uint("user_id", userID).
			Err(err).
			Log()
		return
	}
	if err := s.users.UpdateTokenVersion(ctx, userID, user.TokenVersion+1); err != nil {
		logger.WarnWithContext(ctx, "Failed to bump token version after password update").
			Uint("user_id", userID).
			Err(err).
			Log()
	}
}
