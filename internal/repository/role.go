package repository

import (
	"context"

	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetBySlug loads a role with its permissions.
func (r *RoleRepository) GetBySlug(ctx context.Context, slug string) (*model.Role, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetBySlug")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var role model.Role
	result := r.db.WithContext(ctx).Preload("Permissions").Where("slug = ?", slug).First(&role)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Role lookup missed").
			String("slug", slug).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &role, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	result := r.db.WithContext(ctx).Preload("Permissions").Where("id = ?", id).First(&role)
	if result.Error != nil {
		return nil, result.Error
	}
	return &role, nil
}
