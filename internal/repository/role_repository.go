package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"personapilot/internal/model"
)

// RoleRepository defines role persistence operations.
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Save(ctx context.Context, role *model.Role) error
	FindDefaultByUser(ctx context.Context, userID uuid.UUID) (*model.Role, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// Create creates a new role.
func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// Save updates every column of an existing role.
func (r *roleRepository) Save(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

// FindDefaultByUser returns the user's default role.
func (r *roleRepository) FindDefaultByUser(ctx context.Context, userID uuid.UUID) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		Order("created_at DESC").
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}
