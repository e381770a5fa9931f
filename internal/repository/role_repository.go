package repository

import (
	"book_platform_backend/internal/model"

	"gorm.io/gorm"
)

type RoleRepository struct {
	DB *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{DB: db}
}

func (r *RoleRepository) FindByName(name string) (*model.Role, error) {
	var role model.Role
	err := r.DB.Where("name = ?", name).First(&role).Error
	return &role, err
}

func (r *RoleRepository) Create(role *model.Role) error {
	return r.DB.Create(role).Error
}

// FindPermission looks a permission up by its natural key within a role.
func (r *RoleRepository) FindPermission(roleID uint, name, resource, action string) (*model.Permission, error) {
	var perm model.Permission
	err := r.DB.Where("role_id = ? AND name = ? AND resource = ? AND action = ?",
		roleID, name, resource, action).First(&perm).Error
	return &perm, err
}

func (r *RoleRepository) CreatePermission(perm *model.Permission) error {
	return r.DB.Create(perm).Error
}

// UserHasRole checks the join table directly, without loading associations.
func (r *RoleRepository) UserHasRole(userID, roleID uint) (bool, error) {
	var count int64
	err := r.DB.Table("user_roles").
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error
	return count > 0, err
}

func (r *RoleRepository) AddUserRole(user *model.User, role *model.Role) error {
	return r.DB.Model(user).Association("Roles").Append(role)
}

func (r *RoleRepository) RemoveUserRole(user *model.User, role *model.Role) error {
	return r.DB.Model(user).Association("Roles").Delete(role)
}
