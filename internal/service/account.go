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

type accountUserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	MobileNumberExists(ctx context.Context, mobile string) (bool, error)
	Create(ctx context.Context, user *model.User) error
	Activate(ctx context.Context, id uint) error
	ReplacePermissions(ctx context.Context, user *model.User, permissions []model.Permission) error
}

type accountVerificationStore interface {
	CreateAccountVerification(ctx context.Context, req *model.AccountVerificationRequest) error
	GetAccountVerificationByCode(ctx context.Context, code string) (*model.AccountVerificationRequest, error)
	GetLatestAccountVerificationByUser(ctx context.Context, userID uint) (*model.AccountVerificationRequest, error)
	ConsumeAccountVerification(ctx context.Context, id uint, at time.Time) error
}

// AccountService owns registration and activation: creating accounts,
// verifying them with one-time codes and resending those codes.
type AccountService struct {
	users         accountUserStore
	roles         roleStore
	verifications accountVerificationStore
	mail          mailer.Dispatcher
	cfg           *config.Config
	now           func() time.Time
}

func NewAccountService(users accountUserStore, roles roleStore, verifications accountVerificationStore, mail mailer.Dispatcher, cfg *config.Config) *AccountService {
	return &AccountService{
		users:         users,
		roles:         roles,
		verifications: verifications,
		mail:          mail,
		cfg:           cfg,
		now:           time.Now,
	}
}

// Register creates an account. Registrations arriving through a corporate
// host are activated immediately; everyone else gets a verification mail.
func (s *AccountService) Register(ctx context.Context, req *dto.RegisterRequest, host string) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Register")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	mobile := strings.TrimSpace(req.MobileNumber)

	logger.InfoWithContext(ctx, "Registering new user").
		String("username", req.Username).
		String("email", email).
		String("role", req.Role).
		Log()

	if email == "" && mobile == "" {
		return nil, apperrors.ErrMobileOrEmail
	}

	role, err := s.roles.GetBySlug(ctx, req.Role)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if email != "" {
		exists, err := s.users.EmailExists(ctx, email)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if exists {
			return nil, apperrors.ErrEmailRegistered
		}
	}
	exists, err := s.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		return nil, apperrors.ErrUsernameRegistered
	}
	if mobile != "" {
		exists, err := s.users.MobileNumberExists(ctx, mobile)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if exists {
			return nil, apperrors.ErrNumberRegistered
		}
	}

	if violations := validation.PasswordPolicy(req.Password, req.Username, email); len(violations) > 0 {
		return nil, apperrors.NewPasswordPolicyError(violations)
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			String("username", req.Username).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	authCode, err := GenerateCode(s.cfg.Verification.CodeLength)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	isActive := s.cfg.IsCorporateHost(host)

	user := &model.User{
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		MobileNumber: mobile,
		Password:     hashedPassword,
		AuthCode:     authCode,
		IsActive:     isActive,
		RoleID:       &role.ID,
		CityID:       req.CityID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", req.Username).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	user.Role = role

	if err := s.users.ReplacePermissions(ctx, user, role.Permissions); err != nil {
		logger.ErrorWithContext(ctx, "Failed to copy role permissions").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !isActive && email != "" {
		if err := s.InitiateVerification(ctx, user); err != nil {
			// The account already exists and resend-verification can
			// recover it, so registration still succeeds.
			logger.ErrorWithContext(ctx, "Failed to initiate account verification").
				Uint("user_id", user.ID).
				Err(err).
				Log()
		}
	}

	logger.InfoWithContext(ctx, "User registered successfully").
		Uint("user_id", user.ID).
		String("username", user.Username).
		Bool("auto_activated", isActive).
		Log()

	response := toUserResponse(user, s.cfg.Badge)
	return &response, nil
}

// VerifyAccount consumes a verification code and activates the account.
// Invalid, expired and already-used codes are three distinct failures.
func (s *AccountService) VerifyAccount(ctx context.Context, code string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "VerifyAccount")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if code == "" {
		return apperrors.ErrCodeRequired
	}

	req, err := s.verifications.GetAccountVerificationByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrCodeInvalid
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if req.IsExpired(s.now()) {
		return apperrors.ErrCodeExpired
	}
	if req.IsAccountVerified {
		return apperrors.ErrCodeAlreadyUsed
	}

	if err := s.verifications.ConsumeAccountVerification(ctx, req.ID, s.now()); err != nil {
		if err == gorm.ErrRecordNotFound {
			// Lost a race with another consume of the same code.
			return apperrors.ErrCodeAlreadyUsed
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.Activate(ctx, req.UserID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Account activated").
		Uint("user_id", req.UserID).
		Log()

	return nil
}

// ResendVerification re-sends the active code while it is still valid and
// mints a fresh one only when the previous code expired or was consumed.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ResendVerification")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFoundEmail
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	latest, err := s.verifications.GetLatestAccountVerificationByUser(ctx, user.ID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if latest != nil && !latest.IsAccountVerified && !latest.IsExpired(s.now()) {
		s.dispatchActivationMail(ctx, user, latest.VerificationCode)
		return nil
	}

	return s.InitiateVerification(ctx, user)
}

// InitiateVerification creates a fresh code and queues the activation mail.
func (s *AccountService) InitiateVerification(ctx context.Context, user *model.User) error {
	code, err := GenerateCode(s.cfg.Verification.CodeLength)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	req := &model.AccountVerificationRequest{
		UserID:           user.ID,
		VerificationCode: code,
		ExpiresAt:        s.now().Add(s.cfg.Verification.Window),
	}
	if err := s.verifications.CreateAccountVerification(ctx, req); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.dispatchActivationMail(ctx, user, code)
	return nil
}

func (s *AccountService) dispatchActivationMail(ctx context.Context, user *model.User, code string) {
	job := mailer.MailJob{
		MessageID: uuid.NewString(),
		To:        user.Email,
		Subject:   constants.ActivationMailSubject,
		EmailType: constants.ActivationMailTag,
		Header:    constants.ActivationMailHeader,
		Message:   constants.ActivationMailMessage,
		Name:      user.FullName(),
		Code:      code,
		QueuedAt:  s.now(),
	}
	if err := s.mail.Dispatch(ctx, job); err != nil {
		logger.ErrorWithContext(ctx, "Failed to queue activation mail").
			Uint("user_id", user.ID).
			String("message_id", job.MessageID).
			Err(err).
			Log()
	}
}
