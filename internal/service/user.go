package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/prep-study/pronto/config"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
	"github.com/prep-study/pronto/internal/repository"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// userStore is the slice of the user repository this service needs. Tests
// substitute an in-memory fake.
type userStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetAll(ctx context.Context, limit, offset int, filter repository.UserListFilter) ([]model.User, int64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	ReplacePermissions(ctx context.Context, user *model.User, permissions []model.Permission) error
}

type roleStore interface {
	GetBySlug(ctx context.Context, slug string) (*model.Role, error)
	GetByID(ctx context.Context, id uint) (*model.Role, error)
}

type cityStore interface {
	GetCity(ctx context.Context, id uint) (*model.City, error)
}

type UserService struct {
	users  userStore
	roles  roleStore
	cities cityStore
	badge  config.BadgeConfig
}

func NewUserService(users userStore, roles roleStore, cities cityStore, badge config.BadgeConfig) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		cities: cities,
		badge:  badge,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.InfoWithContext(ctx, "User not found").
				Uint("user_id", id).
				Log()
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Uint("user_id", id).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	response := toUserResponse(user, s.badge)
	return &response, nil
}

func (s *UserService) GetAll(ctx context.Context, limit, offset int, search string, filter dto.UserFilter) ([]dto.UserResponse, int64, int, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetAll")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	logger.InfoWithContext(ctx, "Get all users").
		Int("limit", limit).
		Int("offset", offset).
		String("search", search).
		Log()

	users, total, err := s.users.GetAll(ctx, limit, offset, repository.UserListFilter{
		Search:    search,
		IsActive:  filter.IsActive,
		IsDeleted: filter.IsDeleted,
		RoleSlug:  filter.Role,
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get all users").
			String("search", search).
			Err(err).
			Log()
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	pageTotal := 0
	if limit > 0 {
		pageTotal = int(math.Ceil(float64(total) / float64(limit)))
	}
	res := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		res = append(res, toUserResponse(&users[i], s.badge))
	}

	logger.InfoWithContext(ctx, "Users retrieved successfully").
		Int64("total", total).
		Int("page_total", pageTotal).
		Int("returned_count", len(res)).
		Log()

	return res, total, pageTotal, nil
}

// GetByEmail serves the user-by-email lookup, optionally restricted to a
// given role.
func (s *UserService) GetByEmail(ctx context.Context, email, roleSlug string) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByEmail")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFoundEmail
		}
		logger.ErrorWithContext(ctx, "Failed to get user by email").
			String("email", email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if roleSlug != "" && (user.Role == nil || user.Role.Slug != roleSlug) {
		return nil, apperrors.ErrUserNotFoundEmail
	}

	response := toUserResponse(user, s.badge)
	return &response, nil
}

// Update changes profile fields only; email and password have their own
// verified flows.
func (s *UserService) Update(ctx context.Context, id uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Update")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	if _, err := s.users.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	fields := map[string]interface{}{}
	if req.FirstName != "" {
		fields["first_name"] = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		fields["last_name"] = strings.TrimSpace(req.LastName)
	}
	if req.MobileNumber != "" {
		fields["mobile_number"] = strings.TrimSpace(req.MobileNumber)
	}
	if req.CityID != nil {
		if _, err := s.cities.GetCity(ctx, *req.CityID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.ErrCityNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		fields["city_id"] = *req.CityID
	}

	if len(fields) > 0 {
		if err := s.users.Update(ctx, id, fields); err != nil {
			logger.ErrorWithContext(ctx, "Failed to update user").
				Uint("user_id", id).
				Err(err).
				Log()
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	updated, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User updated successfully").
		Uint("user_id", id).
		Log()

	response := toUserResponse(updated, s.badge)
	return &response, nil
}

// SyncPermissionsFromRole mirrors the role's permission set onto the user.
// Direct grants made after the sync survive until the next sync.
func (s *UserService) SyncPermissionsFromRole(ctx context.Context, userID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "SyncPermissionsFromRole")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user.RoleID == nil {
		return apperrors.ErrRoleNotFound
	}

	role, err := s.roles.GetByID(ctx, *user.RoleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrRoleNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.ReplacePermissions(ctx, user, role.Permissions); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Permissions synced from role").
		Uint("user_id", userID).
		String("role", role.Slug).
		Int("permission_count", len(role.Permissions)).
		Log()

	return nil
}

// toUserResponse maps the user model to its API shape.
func toUserResponse(user *model.User, badge config.BadgeConfig) dto.UserResponse {
	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}

	return dto.UserResponse{
		ID:                  user.ID,
		Username:            user.Username,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		Email:               user.Email,
		MobileNumber:        user.MobileNumber,
		IsActive:            user.IsActive,
		IsEmailVerified:     user.IsEmailVerified,
		HasCompletedProfile: user.HasCompletedProfile,
		Role:                roleName,
		Badge:               badgeForGems(badge, user.Gems),
		Gems:                user.Gems,
		LastLogin:           user.LastLogin,
		CreatedAt:           user.CreatedAt,
		UpdatedAt:           user.UpdatedAt,
	}
}

// badgeForGems returns the highest badge the gem count has reached, or ""
// below the first threshold.
func badgeForGems(cfg config.BadgeConfig, gems int) string {
	switch {
	case gems >= cfg.ChampionGems:
		return constants.BadgeChampion
	case gems >= cfg.DiamondGems:
		return constants.BadgeDiamond
	case gems >= cfg.GoldGems:
		return constants.BadgeGold
	case gems >= cfg.SilverGems:
		return constants.BadgeSilver
	case gems >= cfg.BronzeGems:
		return constants.BadgeBronze
	default:
		return ""
	}
}

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// checkPassword verifies a password against its hash
func checkPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
