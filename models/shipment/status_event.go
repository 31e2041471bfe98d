package shipment

import (
	"time"
)

// StatusEvent is the audit row written for every status transition, in the
// same transaction as the transition itself.
type StatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for shipment relationship
	ShipmentID string   `gorm:"type:varchar(36);not null;index" json:"shipment_id"`
	Shipment   Shipment `gorm:"foreignKey:ShipmentID" json:"shipment"`

	PreviousStatus Status `gorm:"type:varchar(50);not null" json:"previous_status"`
	NextStatus     Status `gorm:"type:varchar(50);not null" json:"next_status"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the StatusEvent model
func (StatusEvent) TableName() string {
	return "shipment_status_events"
}
