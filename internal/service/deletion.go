package service

import (
	"context"
	"encoding/json"
	"fmt"
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

type deletionUserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type deletionStore interface {
	Create(ctx context.Context, req *model.DeleteUserAccountRequest) error
	GetByIdentifier(ctx context.Context, identifier uuid.UUID) (*model.DeleteUserAccountRequest, error)
	GetByID(ctx context.Context, id uint) (*model.DeleteUserAccountRequest, error)
	GetPendingByUser(ctx context.Context, userID uint) ([]model.DeleteUserAccountRequest, error)
	Execute(ctx context.Context, requestID, userID uint, at time.Time) error
}

// jobScheduler persists deferred work; the deletion finalizer runs through it.
type jobScheduler interface {
	Schedule(ctx context.Context, kind string, payload interface{}, notBefore time.Time) error
}

// FinalizeDeletionPayload is the durable payload of a finalize job.
type FinalizeDeletionPayload struct {
	RequestID uint `json:"request_id"`
	UserID    uint `json:"user_id"`
}

// DeletionService implements delayed account deletion: a request starts a
// grace period, login activity cancels it, and a scheduled job finalizes it
// once the period passes without a login.
type DeletionService struct {
	users     deletionUserStore
	deletions deletionStore
	scheduler jobScheduler
	mail      mailer.Dispatcher
	cfg       *config.Config
	now       func() time.Time
}

func NewDeletionService(users deletionUserStore, deletions deletionStore, scheduler jobScheduler, mail mailer.Dispatcher, cfg *config.Config) *DeletionService {
	return &DeletionService{
		users:     users,
		deletions: deletions,
		scheduler: scheduler,
		mail:      mail,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Request opens a deletion request for the user and schedules its finalizer
// after the grace period.
func (s *DeletionService) Request(ctx context.Context, userID uint, reason string) (*dto.DeleteAccountResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Request")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	req, err := s.create(ctx, userID, reason)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Account deletion requested").
		Uint("user_id", userID).
		String("identifier", req.Identifier.String()).
		Log()

	return &dto.DeleteAccountResponse{
		Identifier:  req.Identifier.String(),
		RequestedAt: req.RequestedAt,
	}, nil
}

func (s *DeletionService) create(ctx context.Context, userID uint, reason string) (*model.DeleteUserAccountRequest, error) {
	req := &model.DeleteUserAccountRequest{
		Identifier:  uuid.New(),
		UserID:      userID,
		Reason:      strings.TrimSpace(reason),
		RequestedAt: s.now(),
	}
	if err := s.deletions.Create(ctx, req); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	payload := FinalizeDeletionPayload{RequestID: req.ID, UserID: userID}
	runAt := s.now().Add(s.cfg.Verification.DeletionGrace)
	if err := s.scheduler.Schedule(ctx, model.JobKindFinalizeAccountDeletion, payload, runAt); err != nil {
		logger.ErrorWithContext(ctx, "Failed to schedule deletion finalizer").
			Uint("user_id", userID).
			Uint("request_id", req.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return req, nil
}

// SendDeleteEmail mails a confirmation link for the account's pending
// deletion request, opening one first when none exists.
func (s *DeletionService) SendDeleteEmail(ctx context.Context, email, reason, host string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "SendDeleteEmail")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFoundEmail
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	pending, err := s.deletions.GetPendingByUser(ctx, user.ID)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	var req *model.DeleteUserAccountRequest
	if len(pending) > 0 {
		req = &pending[0]
	} else {
		req, err = s.create(ctx, user.ID, reason)
		if err != nil {
			return err
		}
	}

	link := fmt.Sprintf("https://%s/api/v1/auth/delete-account-request?uid=%s", host, req.Identifier.String())
	job := mailer.MailJob{
		MessageID: uuid.NewString(),
		To:        user.Email,
		Subject:   constants.DeleteRequestMailSubject,
		EmailType: constants.DeleteRequestMailTag,
		Header:    constants.DeleteRequestMailHeader,
		Message:   constants.DeleteRequestMailMessage,
		Name:      user.FullName(),
		Link:      link,
		QueuedAt:  s.now(),
	}
	if err := s.mail.Dispatch(ctx, job); err != nil {
		logger.ErrorWithContext(ctx, "Failed to queue deletion confirmation mail").
			Uint("user_id", user.ID).
			String("message_id", job.MessageID).
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "Deletion confirmation mail queued").
		Uint("user_id", user.ID).
		String("identifier", req.Identifier.String()).
		Log()

	return nil
}

// ConfirmByIdentifier acknowledges the deletion request named by the mailed
// link. It only checks that the request still exists and is pending; the
// account itself is removed by the scheduled finalizer once the grace period
// passes, so a login can still cancel it.
func (s *DeletionService) ConfirmByIdentifier(ctx context.Context, uid string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ConfirmByIdentifier")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	identifier, err := uuid.Parse(uid)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInvalidInput, err)
	}

	req, err := s.deletions.GetByIdentifier(ctx, identifier)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !req.IsPending() {
		// Cancelled by a login, or already executed.
		return apperrors.ErrUserNotFound
	}

	logger.InfoWithContext(ctx, "Deletion request confirmed").
		Uint("request_id", req.ID).
		Uint("user_id", req.UserID).
		Log()

	return nil
}

// HandleFinalize is the scheduled-job handler that executes a deletion once
// the grace period has passed. It rechecks live state so a login during the
// wait, or an earlier execution, turns it into a no-op.
func (s *DeletionService) HandleFinalize(ctx context.Context, payload []byte) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "HandleFinalize")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	var p FinalizeDeletionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid finalize payload: %w", err)
	}

	req, err := s.deletions.GetByID(ctx, p.RequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.WarnWithContext(ctx, "Deletion request vanished before finalize").
				Uint("request_id", p.RequestID).
				Log()
			return nil
		}
		return err
	}

	if !req.IsPending() {
		logger.InfoWithContext(ctx, "Deletion finalizer skipped").
			Uint("request_id", req.ID).
			Uint("user_id", req.UserID).
			Bool("cancelled_by_login", req.IsLoggedIn).
			Bool("already_deleted", req.IsAccountDeleted).
			Log()
		return nil
	}

	if err := s.deletions.Execute(ctx, req.ID, req.UserID, s.now()); err != nil {
		if err == gorm.ErrRecordNotFound {
			// Another worker finalized it between the read and the write.
			return nil
		}
		return err
	}

	logger.InfoWithContext(ctx, "Account deletion finalized").
		Uint("request_id", req.ID).
		Uint("user_id", req.UserID).
		Log()

	return nil
}
