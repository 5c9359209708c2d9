package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(150)" json:"last_name"`
	UserTypeID   *uint64    `json:"-"`
	UserType     *UserType  `gorm:"foreignKey:UserTypeID;constraint:OnDelete:RESTRICT" json:"user_type,omitempty"`
	IsStaff      bool       `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool       `gorm:"not null;default:false" json:"-"`
	PhoneNumber  string     `gorm:"type:varchar(20)" json:"phone_number"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Bio          string     `gorm:"type:text" json:"bio"`
	Address      string     `gorm:"type:varchar(255)" json:"address"`
	City         string     `gorm:"type:varchar(100)" json:"city"`
	Country      string     `gorm:"type:varchar(100)" json:"country"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// DeriveAccessFlags maps a role code to the (is_staff, is_superuser) pair.
// A nil code means the user carries no role and gets no elevated access.
func DeriveAccessFlags(code *RoleCode) (isStaff, isSuperuser bool) {
	if code == nil {
		return false, false
	}
	switch *code {
	case RoleSuperAdmin:
		return true, true
	case RoleAdmin, RoleStaff:
		return true, false
	default:
		return false, false
	}
}

// HasGlobalDataAccess is the single predicate separating "see/modify
// everything" from "see/modify only own records". It reads only persisted
// state (flags + role), never cached decisions.
func (u *User) HasGlobalDataAccess() bool {
	if u.IsSuperuser || u.IsStaff {
		return true
	}
	if u.UserType == nil {
		return false
	}
	return u.UserType.Code == RoleAdmin || u.UserType.Code == RoleSuperAdmin
}

// FullName returns "First Last", falling back to the email when both names
// are blank.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// BeforeSave recomputes the derived access flags from the role on every
// persist so they can never drift, regardless of the entry point.
func (u *User) BeforeSave(tx *gorm.DB) error {
	var code *RoleCode
	if u.UserTypeID != nil {
		if u.UserType != nil && u.UserType.ID == *u.UserTypeID {
			code = &u.UserType.Code
		} else {
			var role UserType
			if err := tx.First(&role, *u.UserTypeID).Error; err != nil {
				return err
			}
			code = &role.Code
		}
	}
	u.IsStaff, u.IsSuperuser = DeriveAccessFlags(code)
	return nil
}
