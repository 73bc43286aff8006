package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
)

func newAccountService(users *fakeUsers, roles *fakeRoles, verifications *fakeVerifications, mail *fakeMailer) *AccountService {
	svc := NewAccountService(users, roles, verifications, mail, testConfig())
	svc.now = fixedNow(testTime())
	return svc
}

func studentRole() *model.Role {
	role := &model.Role{
		Name: "Student",
		Slug: "student",
		Permissions: []model.Permission{
			{Codename: "view_catalog", Name: "Can view catalog"},
		},
	}
	role.ID = 1
	return role
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:  "newuser",
		FirstName: "New",
		LastName:  "User",
		Email:     "new@example.com",
		Password:  "starlight-42",
		Role:      "student",
	}
}

func TestAccountService_Register(t *testing.T) {
	users := newFakeUsers()
	verifications := &fakeVerifications{}
	mail := &fakeMailer{}
	svc := newAccountService(users, newFakeRoles(studentRole()), verifications, mail)

	res, err := svc.Register(context.Background(), registerRequest(), "app.prep.study")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.IsActive {
		t.Error("Expected account to start inactive")
	}
	if res.Role != "Student" {
		t.Errorf("Expected role Student, got %q", res.Role)
	}

	created, err := users.GetByEmail(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("Created user not found: %v", err)
	}
	if created.Password == "starlight-42" {
		t.Error("Password stored in plain text")
	}
	if !checkPassword(created.Password, "starlight-42") {
		t.Error("Stored password hash does not verify")
	}
	if len(created.AuthCode) != 8 {
		t.Errorf("Expected 8-char auth code, got %q", created.AuthCode)
	}
	if got := users.permissionsByUser[created.ID]; len(got) != 1 {
		t.Errorf("Expected 1 copied permission, got %d", len(got))
	}

	if len(verifications.accountVerifications) != 1 {
		t.Fatalf("Expected 1 verification request, got %d", len(verifications.accountVerifications))
	}
	verification := verifications.accountVerifications[0]
	if verification.UserID != created.ID {
		t.Errorf("Verification bound to user %d, want %d", verification.UserID, created.ID)
	}
	if want := testTime().Add(time.Hour); !verification.ExpiresAt.Equal(want) {
		t.Errorf("Expected expiry %v, got %v", want, verification.ExpiresAt)
	}
	if len(mail.jobs) != 1 {
		t.Fatalf("Expected 1 activation mail, got %d", len(mail.jobs))
	}
	if mail.jobs[0].Code != verification.VerificationCode {
		t.Error("Mailed code does not match the stored verification code")
	}
}

func TestAccountService_Register_NormalizesEmail(t *testing.T) {
	users := newFakeUsers()
	svc := newAccountService(users, newFakeRoles(studentRole()), &fakeVerifications{}, &fakeMailer{})

	req := registerRequest()
	req.Email = "  New@Example.COM "
	if _, err := svc.Register(context.Background(), req, "app.prep.study"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := users.GetByEmail(context.Background(), "new@example.com"); err != nil {
		t.Errorf("Expected user stored under lowercased email: %v", err)
	}
}

func TestAccountService_Register_CorporateHost(t *testing.T) {
	users := newFakeUsers()
	verifications := &fakeVerifications{}
	mail := &fakeMailer{}
	svc := newAccountService(users, newFakeRoles(studentRole()), verifications, mail)

	res, err := svc.Register(context.Background(), registerRequest(), "corp.prep.study")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !res.IsActive {
		t.Error("Expected corporate registration to be activated immediately")
	}
	if res.IsEmailVerified {
		t.Error("Auto-activation must not mark the email verified")
	}
	if len(verifications.accountVerifications) != 0 {
		t.Errorf("Expected no verification request, got %d", len(verifications.accountVerifications))
	}
	if len(mail.jobs) != 0 {
		t.Errorf("Expected no activation mail, got %d", len(mail.jobs))
	}
}

func TestAccountService_Register_Rejections(t *testing.T) {
	existing := &model.User{
		Username:     "taken",
		Email:        "taken@example.com",
		MobileNumber: "08123456789",
		Password:     mustHash("starlight-42"),
	}

	tests := []struct {
		name    string
		mutate  func(*dto.RegisterRequest)
		wantErr error
	}{
		{
			name: "no contact point",
			mutate: func(req *dto.RegisterRequest) {
				req.Email = ""
				req.MobileNumber = ""
			},
			wantErr: apperrors.ErrMobileOrEmail,
		},
		{
			name:    "unknown role",
			mutate:  func(req *dto.RegisterRequest) { req.Role = "wizard" },
			wantErr: apperrors.ErrRoleNotFound,
		},
		{
			name:    "email taken",
			mutate:  func(req *dto.RegisterRequest) { req.Email = "taken@example.com" },
			wantErr: apperrors.ErrEmailRegistered,
		},
		{
			name:    "username taken",
			mutate:  func(req *dto.RegisterRequest) { req.Username = "taken" },
			wantErr: apperrors.ErrUsernameRegistered,
		},
		{
			name:    "mobile number taken",
			mutate:  func(req *dto.RegisterRequest) { req.MobileNumber = "08123456789" },
			wantErr: apperrors.ErrNumberRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAccountService(newFakeUsers(existing), newFakeRoles(studentRole()), &fakeVerifications{}, &fakeMailer{})
			req := registerRequest()
			tt.mutate(req)
			if _, err := svc.Register(context.Background(), req, "app.prep.study"); err != tt.wantErr {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAccountService_Register_PolicyViolations(t *testing.T) {
	users := newFakeUsers()
	svc := newAccountService(users, newFakeRoles(studentRole()), &fakeVerifications{}, &fakeMailer{})

	req := registerRequest()
	req.Password = "newuser1"
	_, err := svc.Register(context.Background(), req, "app.prep.study")
	domainErr := apperrors.GetDomainError(err)
	if domainErr == nil || domainErr.Code != "PASSWORD_POLICY_VIOLATION" {
		t.Fatalf("Expected a password policy error, got %v", err)
	}
	if !strings.Contains(domainErr.Message, "too similar to the username") {
		t.Errorf("Expected the username-similarity rule, got %q", domainErr.Message)
	}
	if _, lookupErr := users.GetByEmail(context.Background(), "new@example.com"); lookupErr == nil {
		t.Error("No account may be created when the password fails policy")
	}
}

func TestAccountService_Register_MailFailureIsNotFatal(t *testing.T) {
	mail := &fakeMailer{err: errTest}
	svc := newAccountService(newFakeUsers(), newFakeRoles(studentRole()), &fakeVerifications{}, mail)

	if _, err := svc.Register(context.Background(), registerRequest(), "app.prep.study"); err != nil {
		t.Errorf("Expected registration to survive a mail failure, got %v", err)
	}
}

func TestAccountService_VerifyAccount(t *testing.T) {
	user := &model.User{Username: "newuser", Email: "new@example.com"}
	users := newFakeUsers(user)
	verifications := &fakeVerifications{}
	verification := &model.AccountVerificationRequest{
		UserID:           user.ID,
		VerificationCode: "ABCD1234",
		ExpiresAt:        testTime().Add(time.Hour),
	}
	if err := verifications.CreateAccountVerification(context.Background(), verification); err != nil {
		t.Fatal(err)
	}
	svc := newAccountService(users, newFakeRoles(studentRole()), verifications, &fakeMailer{})

	if err := svc.VerifyAccount(context.Background(), "ABCD1234"); err != nil {
		t.Fatalf("VerifyAccount returned error: %v", err)
	}
	if !user.IsActive {
		t.Error("Expected account to be activated")
	}
	if !user.IsEmailVerified {
		t.Error("Expected the email to be marked verified")
	}
	if !verification.IsAccountVerified {
		t.Error("Expected verification request to be consumed")
	}

	// The same code cannot activate twice.
	if err := svc.VerifyAccount(context.Background(), "ABCD1234"); err != apperrors.ErrCodeAlreadyUsed {
		t.Errorf("Expected ErrCodeAlreadyUsed on second use, got %v", err)
	}
}

func TestAccountService_VerifyAccount_CodeLadder(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		setup   func(*fakeVerifications)
		wantErr error
	}{
		{
			name:    "empty code",
			code:    "",
			setup:   func(*fakeVerifications) {},
			wantErr: apperrors.ErrCodeRequired,
		},
		{
			name:    "unknown code",
			code:    "NOPE0000",
			setup:   func(*fakeVerifications) {},
			wantErr: apperrors.ErrCodeInvalid,
		},
		{
			name: "expired code",
			code: "OLD00000",
			setup: func(f *fakeVerifications) {
				_ = f.CreateAccountVerification(context.Background(), &model.AccountVerificationRequest{
					UserID:           1,
					VerificationCode: "OLD00000",
					ExpiresAt:        testTime().Add(-time.Minute),
				})
			},
			wantErr: apperrors.ErrCodeExpired,
		},
		{
			name: "already used code",
			code: "USED0000",
			setup: func(f *fakeVerifications) {
				_ = f.CreateAccountVerification(context.Background(), &model.AccountVerificationRequest{
					UserID:            1,
					VerificationCode:  "USED0000",
					ExpiresAt:         testTime().Add(time.Hour),
					IsAccountVerified: true,
				})
			},
			wantErr: apperrors.ErrCodeAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifications := &fakeVerifications{}
			tt.setup(verifications)
			svc := newAccountService(newFakeUsers(&model.User{Username: "u"}), newFakeRoles(studentRole()), verifications, &fakeMailer{})
			if err := svc.VerifyAccount(context.Background(), tt.code); err != tt.wantErr {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAccountService_ResendVerification_ReusesValidCode(t *testing.T) {
	user := &model.User{Username: "newuser", Email: "new@example.com"}
	users := newFakeUsers(user)
	verifications := &fakeVerifications{}
	_ = verifications.CreateAccountVerification(context.Background(), &model.AccountVerificationRequest{
		UserID:           user.ID,
		VerificationCode: "STILLOK1",
		ExpiresAt:        testTime().Add(time.Hour),
	})
	mail := &fakeMailer{}
	svc := newAccountService(users, newFakeRoles(studentRole()), verifications, mail)

	if err := svc.ResendVerification(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("ResendVerification returned error: %v", err)
	}
	if len(verifications.accountVerifications) != 1 {
		t.Errorf("Expected no new verification request, got %d", len(verifications.accountVerifications))
	}
	if len(mail.jobs) != 1 || mail.jobs[0].Code != "STILLOK1" {
		t.Errorf("Expected the still-valid code to be re-sent, got %+v", mail.jobs)
	}
}

func TestAccountService_ResendVerification_MintsFreshCode(t *testing.T) {
	user := &model.User{Username: "newuser", Email: "new@example.com"}
	users := newFakeUsers(user)
	verifications := &fakeVerifications{}
	_ = verifications.CreateAccountVerification(context.Background(), &model.AccountVerificationRequest{
		UserID:           user.ID,
		VerificationCode: "EXPIRED1",
		ExpiresAt:        testTime().Add(-time.Minute),
	})
	mail := &fakeMailer{}
	svc := newAccountService(users, newFakeRoles(studentRole()), verifications, mail)

	if err := svc.ResendVerification(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("ResendVerification returned error: %v", err)
	}
	if len(verifications.accountVerifications) != 2 {
		t.Fatalf("Expected a fresh verification request, got %d total", len(verifications.accountVerifications))
	}
	fresh := verifications.accountVerifications[1]
	if fresh.VerificationCode == "EXPIRED1" {
		t.Error("Expected a new code, got the expired one")
	}
	if want := testTime().Add(time.Hour); !fresh.ExpiresAt.Equal(want) {
		t.Errorf("Expected expiry %v, got %v", want, fresh.ExpiresAt)
	}
	if len(mail.jobs) != 1 || mail.jobs[0].Code != fresh.VerificationCode {
		t.Error("Expected the fresh code to be mailed")
	}
}

func TestAccountService_ResendVerification_UnknownEmail(t *testing.T) {
	svc := newAccountService(newFakeUsers(), newFakeRoles(studentRole()), &fakeVerifications{}, &fakeMailer{})
	if err := svc.ResendVerification(context.Background(), "ghost@example.com"); err != apperrors.ErrUserNotFoundEmail {
		t.Errorf("Expected ErrUserNotFoundEmail, got %v", err)
	}
}
