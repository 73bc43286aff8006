package model

import (
	"time"

	"gorm.io/gorm"
)

// Role groups the permissions granted to a class of users.
type Role struct {
	gorm.Model
	Name        string       `gorm:"column:name;not null"`
	Slug        string       `gorm:"column:slug;unique;not null"`
	Permissions []Permission `gorm:"many2many:role_permissions"`
}

type Permission struct {
	gorm.Model
	Codename string `gorm:"column:codename;unique;not null"`
	Name     string `gorm:"column:name;not null"`
}

type User struct {
	gorm.Model
	Username  string `gorm:"column:username;unique;not null"`
	FirstName string `gorm:"column:first_name;not null"`
	LastName  string `gorm:"column:last_name"`
	// Email must stay unique among live accounts only; a deleted account
	// frees its address for re-registration.
	Email               string     `gorm:"column:email;index:idx_users_email_live,unique,where:is_deleted = false"`
	MobileNumber        string     `gorm:"column:mobile_number"`
	Password            string     `gorm:"column:password;not null"`
	AuthCode            string     `gorm:"column:auth_code;index"`
	IsActive            bool       `gorm:"column:is_active;default:false;not null"`
	IsEmailVerified     bool       `gorm:"column:is_email_verified;default:false;not null"`
	IsDeleted           bool       `gorm:"column:is_deleted;default:false;not null"`
	HasCompletedProfile bool       `gorm:"column:has_completed_profile;default:false;not null"`
	Gems                int        `gorm:"column:gems;default:0;not null"`
	RoleID              *uint      `gorm:"column:role_id"`
	Role                *Role      `gorm:"foreignKey:RoleID"`
	// Copied from the role on assignment; direct grants are layered on top.
	Permissions         []Permission `gorm:"many2many:user_permissions"`
	CityID              *uint        `gorm:"column:city_id"`
	City                *City        `gorm:"foreignKey:CityID"`
	LastLogin           time.Time    `gorm:"column:last_login"`
	TokenVersion        int          `gorm:"column:token_version;default:1;not null"`
	RefreshTokenHash    string       `gorm:"column:refresh_token_hash;default:null;index:idx_users_refresh_token_hash,where:refresh_token_hash IS NOT NULL"`
	RefreshTokenExpires *time.Time   `gorm:"column:refresh_token_expires_at;default:null;index:idx_users_token_cleanup,where:refresh_token_expires_at IS NOT NULL"`
}

// FullName joins first and last name for mail templates.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
