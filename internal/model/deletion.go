package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteUserAccountRequest asks for the account to be removed after a grace
// period with no login activity. IsLoggedIn marks a cancelled request;
// IsAccountDeleted marks an executed one.
type DeleteUserAccountRequest struct {
	gorm.Model
	Identifier       uuid.UUID  `gorm:"column:identifier;type:uuid;unique;not null"`
	UserID           uint       `gorm:"column:user_id;not null;index"`
	User             *User      `gorm:"foreignKey:UserID"`
	Reason           string     `gorm:"column:reason;type:text"`
	IsLoggedIn       bool       `gorm:"column:is_logged_in;default:false;not null"`
	IsAccountDeleted bool       `gorm:"column:is_account_deleted;default:false;not null"`
	RequestedAt      time.Time  `gorm:"column:requested_at;not null"`
	ConfirmAt        *time.Time `gorm:"column:confirm_at"`
}

// IsPending reports whether the request is still waiting to be executed.
func (r *DeleteUserAccountRequest) IsPending() bool {
	return !r.IsLoggedIn && !r.IsAccountDeleted
}
