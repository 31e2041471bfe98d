package document

import (
	"time"
)

// Document is metadata for a file attached to a shipment. The file itself
// lives behind URL; only the record is managed here.
type Document struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	ShipmentID string `gorm:"type:varchar(36);not null;index" json:"shipment_id"`

	FileName   string `gorm:"type:varchar(255);not null" json:"file_name"`
	Type       string `gorm:"type:varchar(50);not null" json:"type"`
	UploadedBy string `gorm:"type:varchar(255);not null" json:"uploaded_by"`
	URL        string `gorm:"type:varchar(2048);not null" json:"url"`
	IsActive   bool   `gorm:"type:bool;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Document type classifications.
const (
	TypeBillOfLading = "bill_of_lading"
	TypeInvoice      = "invoice"
	TypePackingList  = "packing_list"
	TypeOther        = "other"
)
