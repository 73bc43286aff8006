package database

import (
	"github.com/prep-study/pronto/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Permission{},
		&model.Role{},
		&model.Country{},
		&model.State{},
		&model.City{},
		&model.User{},
		&model.AccountVerificationRequest{},
		&model.PasswordResetRequest{},
		&model.EmailChangeRequest{},
		&model.DeleteUserAccountRequest{},
		&model.UserEnvironmentDetails{},
		&model.UserSession{},
		&model.EmailHistory{},
		&model.Category{},
		&model.Manufacturer{},
		&model.Product{},
		&model.ScheduledJob{},
	)
}
