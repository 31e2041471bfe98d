package shipment

import (
	"time"

	"cargo-portal/constants"
	"cargo-portal/types"
)

// Patch enumerates exactly the mutable fields of a shipment. Nil means
// "leave unchanged". An explicit patch type keeps over-broad writes out of
// the merge path; unknown keys never reach the store.
type Patch struct {
	ClientName       *string    `json:"client_name,omitempty"`
	OperatorName     *string    `json:"operator_name,omitempty"`
	Origin           *string    `json:"origin,omitempty"`
	Destination      *string    `json:"destination,omitempty"`
	PlannedDeparture *time.Time `json:"planned_departure,omitempty"`
	PlannedArrival   *time.Time `json:"planned_arrival,omitempty"`
	ContainerCount   *int       `json:"container_count,omitempty"`
	Status           *Status    `json:"status,omitempty"`
	BLNumber         *string    `json:"bl_number,omitempty"`
	Carrier          *string    `json:"carrier,omitempty"`
	BookingRef       *string    `json:"booking_ref,omitempty"`
	Observations     *string    `json:"observations,omitempty"`
	CompanyID        *uint      `json:"company_id,omitempty"`

	// ClearCompany detaches the shipment from its company. Separate from
	// CompanyID because nil there means "unchanged".
	ClearCompany bool `json:"clear_company,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *Patch) IsEmpty() bool {
	return p.ClientName == nil && p.OperatorName == nil && p.Origin == nil &&
		p.Destination == nil && p.PlannedDeparture == nil && p.PlannedArrival == nil &&
		p.ContainerCount == nil && p.Status == nil && p.BLNumber == nil &&
		p.Carrier == nil && p.BookingRef == nil && p.Observations == nil &&
		p.CompanyID == nil && !p.ClearCompany
}

// ChangesStatus reports whether the patch sets a status different from prev.
func (p *Patch) ChangesStatus(prev Status) bool {
	return p.Status != nil && *p.Status != prev
}

// TouchesRestrictedFields reports whether the patch reaches beyond the
// fields a company user may edit. Company users are limited to peripheral
// fields; everything else is operations-staff territory.
func (p *Patch) TouchesRestrictedFields(role string) bool {
	if role == constants.RoleAdmin {
		return false
	}
	return p.ClientName != nil || p.OperatorName != nil || p.Origin != nil ||
		p.Destination != nil || p.PlannedDeparture != nil || p.PlannedArrival != nil ||
		p.ContainerCount != nil || p.Status != nil || p.BLNumber != nil ||
		p.Carrier != nil || p.BookingRef != nil || p.CompanyID != nil || p.ClearCompany
}

// Validate checks the structural invariants a patch must honor before it is
// merged. Violations surface the implicated fields.
func (p *Patch) Validate() error {
	var conflicts []string
	if p.ClientName != nil && *p.ClientName == "" {
		conflicts = append(conflicts, "client_name")
	}
	if p.Origin != nil && *p.Origin == "" {
		conflicts = append(conflicts, "origin")
	}
	if p.Destination != nil && *p.Destination == "" {
		conflicts = append(conflicts, "destination")
	}
	if p.ContainerCount != nil && *p.ContainerCount <= 0 {
		conflicts = append(conflicts, "container_count")
	}
	if p.Status != nil && !p.Status.IsValid() {
		conflicts = append(conflicts, "status")
	}
	if p.CompanyID != nil && p.ClearCompany {
		conflicts = append(conflicts, "company_id")
	}
	if len(conflicts) > 0 {
		return types.NewConflictError(conflicts...)
	}
	return nil
}

// Apply merges the patch into a copy of s and returns it. Validate must have
// passed before Apply is called.
func (p *Patch) Apply(s Shipment) Shipment {
	if p.ClientName != nil {
		s.ClientName = *p.ClientName
	}
	if p.OperatorName != nil {
		s.OperatorName = *p.OperatorName
	}
	if p.Origin != nil {
		s.Origin = *p.Origin
	}
	if p.Destination != nil {
		s.Destination = *p.Destination
	}
	if p.PlannedDeparture != nil {
		s.PlannedDeparture = p.PlannedDeparture
	}
	if p.PlannedArrival != nil {
		s.PlannedArrival = p.PlannedArrival
	}
	if p.ContainerCount != nil {
		s.ContainerCount = *p.ContainerCount
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.BLNumber != nil {
		s.BLNumber = *p.BLNumber
	}
	if p.Carrier != nil {
		s.Carrier = *p.Carrier
	}
	if p.BookingRef != nil {
		s.BookingRef = *p.BookingRef
	}
	if p.Observations != nil {
		s.Observations = *p.Observations
	}
	if p.CompanyID != nil {
		s.CompanyID = p.CompanyID
	}
	if p.ClearCompany {
		s.CompanyID = nil
		s.Company = nil
	}
	return s
}
