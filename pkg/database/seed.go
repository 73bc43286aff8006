package database

import (
	"github.com/prep-study/pronto/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultAdmin defines the default admin user credentials
type DefaultAdmin struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// GetDefaultAdmin returns the default admin user
func GetDefaultAdmin() DefaultAdmin {
	return DefaultAdmin{
		Username:  "admin",
		FirstName: "Admin",
		LastName:  "Pronto",
		Email:     "admin@prep.study",
		Password:  "Admin@123", // Change this in production!
	}
}

// DefaultRoles lists the roles every deployment starts with.
func DefaultRoles() []model.Role {
	return []model.Role{
		{Name: "Student", Slug: "student"},
		{Name: "Teacher", Slug: "teacher"},
		{Name: "Parent", Slug: "parent"},
		{Name: "HR Personnel", Slug: "hr-personnel"},
		{Name: "Branch Admin", Slug: "branch-admin"},
		{Name: "Corporate Admin", Slug: "corporate-admin"},
	}
}

// Seed creates initial data for the database
func Seed(db *gorm.DB) error {
	if err := SeedRoles(db); err != nil {
		return err
	}
	return SeedUsers(db)
}

// SeedRoles creates the default roles if missing
func SeedRoles(db *gorm.DB) error {
	for _, role := range DefaultRoles() {
		var existing model.Role
		result := db.Where("slug = ?", role.Slug).First(&existing)
		if result.Error == nil {
			continue
		}
		if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}
		if err := db.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates the default admin user if not exists
func SeedUsers(db *gorm.DB) error {
	admin := GetDefaultAdmin()

	// Check if admin user already exists
	var existingUser model.User
	result := db.Where("email = ? AND is_deleted = ?", admin.Email, false).First(&existingUser)

	if result.Error == nil {
		// User already exists, skip seeding
		return nil
	}

	if result.Error != gorm.ErrRecordNotFound {
		// Unexpected error
		return result.Error
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Create the admin user
	user := model.User{
		Username:     admin.Username,
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		Email:        admin.Email,
		Password:     string(hashedPassword),
		IsActive:     true,
		TokenVersion: 1,
	}

	return db.Create(&user).Error
}
