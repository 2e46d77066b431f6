package repository

import (
	"context"

	"clusterdeck/internal/domain"

	"gorm.io/gorm"
)

// RoleRepository provides DB access for roles. Roles are looked up by name;
// ids are an implementation detail of the join table.
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Ensure creates the role if it does not exist yet. Idempotent, used at bootstrap.
func (r *RoleRepository) Ensure(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).Where(domain.Role{Name: name}).FirstOrCreate(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) GetByNames(ctx context.Context, names []string) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&roles).Error
	return roles, err
}
