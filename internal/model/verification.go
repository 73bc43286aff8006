package model

import (
	"time"

	"gorm.io/gorm"
)

// AccountVerificationRequest holds a one-time code sent to activate a new
// account. Codes stay valid until ExpiresAt and may be consumed once.
type AccountVerificationRequest struct {
	gorm.Model
	UserID            uint       `gorm:"column:user_id;not null;index"`
	User              *User      `gorm:"foreignKey:UserID"`
	VerificationCode  string     `gorm:"column:verification_code;size:8;not null;index"`
	ExpiresAt         time.Time  `gorm:"column:expires_at;not null"`
	IsAccountVerified bool       `gorm:"column:is_account_verified;default:false;not null"`
	AccountVerifiedAt *time.Time `gorm:"column:account_verified_at"`
}

// IsExpired reports whether the code has passed its validity window.
func (r *AccountVerificationRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

type PasswordResetRequest struct {
	gorm.Model
	UserID           uint       `gorm:"column:user_id;not null;index"`
	User             *User      `gorm:"foreignKey:UserID"`
	VerificationCode string     `gorm:"column:verification_code;size:8;not null;index"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;not null"`
	IsPasswordReset  bool       `gorm:"column:is_password_reset;default:false;not null"`
	PasswordResetAt  *time.Time `gorm:"column:password_reset_at"`
}

func (r *PasswordResetRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// EmailChangeRequest records a pending move to a new address. The code is
// unique per user so concurrent requests for different addresses can coexist.
type EmailChangeRequest struct {
	gorm.Model
	UserID           uint       `gorm:"column:user_id;not null;index;uniqueIndex:idx_email_change_user_code"`
	User             *User      `gorm:"foreignKey:UserID"`
	NewEmail         string     `gorm:"column:new_email;not null"`
	VerificationCode string     `gorm:"column:verification_code;size:8;not null;uniqueIndex:idx_email_change_user_code"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;not null"`
	IsEmailChanged   bool       `gorm:"column:is_email_changed;default:false;not null"`
	EmailChangedAt   *time.Time `gorm:"column:email_changed_at"`
}

func (r *EmailChangeRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsValid reports whether the request can still be consumed.
func (r *EmailChangeRequest) IsValid(now time.Time) bool {
	return !r.IsEmailChanged && !r.IsExpired(now)
}
