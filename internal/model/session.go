package model

import (
	"time"

	"gorm.io/gorm"
)

// Device types recognised by the environment fingerprint parser.
const (
	DevicePC     = "PC"
	DeviceMobile = "MOBILE"
	DeviceTablet = "TABLET"
	DeviceBot    = "BOT"
)

// UserEnvironmentDetails is a login environment fingerprint. An exact match
// on all fields identifies a returning environment.
type UserEnvironmentDetails struct {
	gorm.Model
	UserID         uint   `gorm:"column:user_id;not null;index"`
	User           *User  `gorm:"foreignKey:UserID"`
	OS             string `gorm:"column:os;size:50"`
	OSVersion      string `gorm:"column:os_version;size:20"`
	IPAddress      string `gorm:"column:ip_address;size:45"`
	Browser        string `gorm:"column:browser;size:50"`
	BrowserVersion string `gorm:"column:browser_version;size:20"`
	DeviceType     string `gorm:"column:device_type;size:6"`
	Device         string `gorm:"column:device;size:50"`
}

// UserSession tracks the latest login per (user, environment) pair.
type UserSession struct {
	gorm.Model
	UserID        uint                    `gorm:"column:user_id;not null;uniqueIndex:idx_sessions_user_env"`
	User          *User                   `gorm:"foreignKey:UserID"`
	EnvironmentID uint                    `gorm:"column:environment_id;not null;uniqueIndex:idx_sessions_user_env"`
	Environment   *UserEnvironmentDetails `gorm:"foreignKey:EnvironmentID"`
	Token         string                  `gorm:"column:token;type:text"`
	LastLogin     time.Time               `gorm:"column:last_login;not null"`
	LastLogout    *time.Time              `gorm:"column:last_logout"`
}
