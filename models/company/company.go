package company

import (
	"time"
)

// Company is an organizational grouping owning users and shipments.
// Deactivation hides it from assignable lists; it never cascade-deletes.
type Company struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Code         string `gorm:"type:varchar(50);not null;unique" json:"code"`
	ContactEmail string `gorm:"type:varchar(255)" json:"contact_email"`
	IsActive     bool   `gorm:"type:bool;default:true" json:"is_active"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
