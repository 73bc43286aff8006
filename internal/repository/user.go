package repository

import (
	"context"
	"time"

	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserListFilter narrows GetAll results.
type UserListFilter struct {
	Search    string
	IsActive  *bool
	IsDeleted *bool
	RoleSlug  string
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var user model.User
	result := r.db.WithContext(ctx).Preload("Role").Where("id = ?", id).First(&user)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

func (r *UserRepository) GetAll(ctx context.Context, limit, offset int, filter UserListFilter) ([]model.User, int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetAll")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	logger.DebugWithContext(ctx, "Getting all users").
		Int("limit", limit).
		Int("offset", offset).
		String("search", filter.Search).
		Log()

	start := time.Now()
	var users []model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR mobile_number ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern, searchPattern,
		)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsDeleted != nil {
		query = query.Where("is_deleted = ?", *filter.IsDeleted)
	}
	if filter.RoleSlug != "" {
		query = query.Joins("JOIN roles ON roles.id = users.role_id").
			Where("roles.slug = ?", filter.RoleSlug)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count total users").
			Err(err).
			Log()
		return nil, 0, err
	}

	if err := query.Preload("Role").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch users").
			Int("limit", limit).
			Int("offset", offset).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.InfoWithContext(ctx, "Users retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, total, nil
}

// GetByEmail finds a live (non-deleted) user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByEmail")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var user model.User
	result := r.db.WithContext(ctx).Preload("Role").
		Where("email = ? AND is_deleted = ?", email, false).
		First(&user)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "User lookup by email missed").
			String("email", email).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &user, nil
}

// GetByUsername finds a live user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByUsername")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var user model.User
	result := r.db.WithContext(ctx).Preload("Role").
		Where("username = ? AND is_deleted = ?", username, false).
		First(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

// GetByAuthCode finds a live user by its short login code.
func (r *UserRepository) GetByAuthCode(ctx context.Context, authCode string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByAuthCode")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var user model.User
	result := r.db.WithContext(ctx).Preload("Role").
		Where("auth_code = ? AND is_deleted = ?", authCode, false).
		First(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

// EmailExists reports whether a live account already uses the address.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND is_deleted = ?", email, false).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? AND is_deleted = ?", username, false).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) MobileNumberExists(ctx context.Context, mobile string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("mobile_number = ? AND is_deleted = ?", mobile, false).
		Count(&count).Error
	return count > 0, err
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Create")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	logger.DebugWithContext(ctx, "Creating new user").
		String("email", user.Email).
		String("username", user.Username).
		Log()

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.InfoWithContext(ctx, "User created successfully").
		String("email", user.Email).
		Uint("user_id", user.ID).
		Duration(time.Since(start)).
		Log()

	return nil
}

// Update updates profile fields (never email or password).
func (r *UserRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to update").
			Uint("user_id", id).
			Log()
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User updated successfully").
		Uint("user_id", id).
		Log()

	return nil
}

// Activate marks the email verified and activates the account after a
// successful verification.
func (r *UserRepository) Activate(ctx context.Context, id uint) error {
	return r.Update(ctx, id, map[string]interface{}{
		"is_email_verified": true,
		"is_active":         true,
	})
}

// UpdatePassword updates user password
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdatePassword")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", hashedPassword)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user password").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User password updated successfully").
		Uint("user_id", id).
		Log()

	return nil
}

// UpdateEmail swaps the account address after a verified email change.
func (r *UserRepository) UpdateEmail(ctx context.Context, id uint, email string) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateEmail")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("email", email)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user email").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User email updated successfully").
		Uint("user_id", id).
		Log()

	return nil
}

// UpdateLastLogin updates the last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateLastLogin")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", time.Now())
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update last login").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

// UpdateRefreshToken updates user's refresh token and expiry
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uint, refreshTokenHash string, expiresAt *time.Time) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateRefreshToken")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"refresh_token_hash":       refreshTokenHash,
		"refresh_token_expires_at": expiresAt,
	})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update refresh token").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// FindByRefreshToken finds user by refresh token
func (r *UserRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*model.User, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "FindByRefreshToken")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	var users []model.User

	result := r.db.WithContext(ctx).
		Where("refresh_token_hash IS NOT NULL AND refresh_token_hash != ''").
		Find(&users)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to query users with refresh tokens").
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	// Hashes are salted, so the plaintext token must be checked against
	// every candidate.
	for _, user := range users {
		err := bcrypt.CompareHashAndPassword([]byte(user.RefreshTokenHash), []byte(refreshToken))
		if err == nil {
			logger.DebugWithContext(ctx, "Refresh token verified successfully").
				Uint("user_id", user.ID).
				Duration(time.Since(start)).
				Log()
			return &user, nil
		}
	}

	return nil, gorm.ErrRecordNotFound
}

// UpdateTokenVersion increments user's token version
func (r *UserRepository) UpdateTokenVersion(ctx context.Context, id uint, newVersion int) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateTokenVersion")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("token_version", newVersion)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update token version").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ReplacePermissions mirrors the role's permission set onto the user.
func (r *UserRepository) ReplacePermissions(ctx context.Context, user *model.User, permissions []model.Permission) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ReplacePermissions")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	if err := r.db.WithContext(ctx).Model(user).Association("Permissions").Replace(permissions); err != nil {
		logger.ErrorWithContext(ctx, "Failed to replace user permissions").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "User permissions synced from role").
		Uint("user_id", user.ID).
		Int("permission_count", len(permissions)).
		Log()

	return nil
}

// CleanupExpiredRefreshTokens removes expired refresh tokens (batch operation)
func (r *UserRepository) CleanupExpiredRefreshTokens(ctx context.Context) (int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CleanupExpiredRefreshTokens")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("refresh_token_expires_at IS NOT NULL AND refresh_token_expires_at < ?", time.Now()).
		Updates(map[string]interface{}{
			"refresh_token_hash":       nil,
			"refresh_token_expires_at": nil,
		})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to cleanup expired refresh tokens").
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	logger.InfoWithContext(ctx, "Expired refresh tokens cleaned up").
		Int64("cleaned_count", result.RowsAffected).
		Log()

	return result.RowsAffected, nil
}
