package user

import (
	"time"

	"cargo-portal/constants"
	companyModel "cargo-portal/models/company"
)

// User is the identity record. Role and IsActive gate every operation;
// role is fixed at creation and accounts are deactivated, never deleted.
type User struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid        string `gorm:"type:varchar(255);not null;unique" json:"uuid"`
	Email       string `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string `gorm:"type:varchar(255);not null" json:"display_name"`
	Role        string `gorm:"type:varchar(50);not null" json:"role"`
	Password    string `gorm:"type:varchar(255);not null" json:"-"`

	// Foreign key for company relationship. NULL for admins and for users
	// not yet attached to a company.
	CompanyID *uint                 `gorm:"index" json:"company_id,omitempty"`
	Company   *companyModel.Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	IsActive bool `gorm:"type:bool;default:true" json:"is_active"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}

// IsCompanyUser reports whether the user is scoped to a single company.
func (u *User) IsCompanyUser() bool {
	return u.Role == constants.RoleCompanyUser
}
