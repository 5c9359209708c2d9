package repository

import (
	"errors"

	"github.com/selimcan/tasktracker/internal/models"
	"gorm.io/gorm"
)

// ErrRoleInUse is returned when deleting a role that users still reference.
var ErrRoleInUse = errors.New("role repository: role is referenced by existing users")

// GormRoleRepository is a GORM implementation of RoleRepository
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByCode finds a role by its code
func (r *GormRoleRepository) FindByCode(code models.RoleCode) (*models.UserType, error) {
	var role models.UserType
	if err := r.db.Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// List returns the catalog ordered by name
func (r *GormRoleRepository) List() ([]models.UserType, error) {
	var roles []models.UserType
	if err := r.db.Order("name").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Delete removes a role. Protect-on-delete: the check runs in the same
// transaction so a concurrent user insert cannot slip past it unnoticed by
// the FK constraint.
func (r *GormRoleRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("user_type_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrRoleInUse
		}
		return tx.Delete(&models.UserType{}, id).Error
	})
}
