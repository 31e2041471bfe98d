package shipment

import (
	"time"

	companyModel "cargo-portal/models/company"
	"cargo-portal/types"
)

// Shipment is the core mutable entity: one cargo movement tracked through a
// status lifecycle. A shipment without a company is visible only to admins;
// once assigned it becomes visible to that company's users.
type Shipment struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ClientName   string `gorm:"type:varchar(255);not null" json:"client_name"`
	OperatorName string `gorm:"type:varchar(255)" json:"operator_name"`
	Origin       string `gorm:"type:varchar(255);not null" json:"origin"`
	Destination  string `gorm:"type:varchar(255);not null" json:"destination"`

	PlannedDeparture *time.Time `json:"planned_departure,omitempty"`
	PlannedArrival   *time.Time `json:"planned_arrival,omitempty"`

	ContainerCount int    `gorm:"type:int;default:1" json:"container_count"`
	Status         Status `gorm:"type:varchar(50);not null" json:"status"`
	BLNumber       string `gorm:"type:varchar(100)" json:"bl_number"`
	Carrier        string `gorm:"type:varchar(255)" json:"carrier"`
	BookingRef     string `gorm:"type:varchar(100)" json:"booking_ref"`
	Observations   string `gorm:"type:text" json:"observations"`

	// Foreign key for company relationship. NULL while the shipment is
	// unassigned; queries scope by presence of this column.
	CompanyID *uint                 `gorm:"index" json:"company_id,omitempty"`
	Company   *companyModel.Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedBy string    `gorm:"type:varchar(255)" json:"updated_by,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Draft carries the admin-supplied fields for a new shipment. Server-assigned
// fields (id, timestamps, audit columns) are filled by the store.
type Draft struct {
	ClientName       string     `json:"client_name"`
	OperatorName     string     `json:"operator_name"`
	Origin           string     `json:"origin"`
	Destination      string     `json:"destination"`
	PlannedDeparture *time.Time `json:"planned_departure,omitempty"`
	PlannedArrival   *time.Time `json:"planned_arrival,omitempty"`
	ContainerCount   int        `json:"container_count"`
	Status           Status     `json:"status"`
	BLNumber         string     `json:"bl_number"`
	Carrier          string     `json:"carrier"`
	BookingRef       string     `json:"booking_ref"`
	Observations     string     `json:"observations"`
	CompanyID        *uint      `json:"company_id,omitempty"`
}

// Normalize fills the draft's defaulted fields in place.
func (d *Draft) Normalize() {
	if d.Status == "" {
		d.Status = StatusScheduled
	}
	if d.ContainerCount == 0 {
		d.ContainerCount = 1
	}
}

// Validate checks the structural invariants a draft must honor.
func (d *Draft) Validate() error {
	var conflicts []string
	if d.ClientName == "" {
		conflicts = append(conflicts, "client_name")
	}
	if d.Origin == "" {
		conflicts = append(conflicts, "origin")
	}
	if d.Destination == "" {
		conflicts = append(conflicts, "destination")
	}
	if d.ContainerCount < 0 {
		conflicts = append(conflicts, "container_count")
	}
	if d.Status != "" && !d.Status.IsValid() {
		conflicts = append(conflicts, "status")
	}
	if len(conflicts) > 0 {
		return types.NewConflictError(conflicts...)
	}
	return nil
}
