package models

type RoleCode string

const (
	RoleUser       RoleCode = "user"
	RoleStaff      RoleCode = "staff"
	RoleAdmin      RoleCode = "admin"
	RoleSuperAdmin RoleCode = "super_admin"
)

// UserType is the seeded role catalog. Rows are referenced by users and never
// created through ordinary request flows.
type UserType struct {
	ID          uint64   `gorm:"primarykey" json:"id"`
	Code        RoleCode `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	Name        string   `gorm:"type:varchar(64);not null" json:"name"`
	Description string   `gorm:"type:varchar(255)" json:"description"`
}

// ValidRoleCode reports whether code is part of the role catalog.
func ValidRoleCode(code RoleCode) bool {
	switch code {
	case RoleUser, RoleStaff, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
