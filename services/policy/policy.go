// Package policy is the pure decision surface for shipment mutations.
// No I/O happens here; every check receives the resolved identity and the
// current shipment and answers yes or no.
package policy

import (
	"cargo-portal/constants"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/types"
)

// CanCreateShipment reports whether id may create shipments. Admin only.
func CanCreateShipment(id *identity.Identity) bool {
	return id.IsAdmin()
}

// CanEditShipment reports whether id may edit s. Admins edit anything; a
// company user edits only shipments owned by their own company. A shipment
// without a company is never editable by a company user.
func CanEditShipment(id *identity.Identity, s *shipmentModel.Shipment) bool {
	if id.IsAdmin() {
		return true
	}
	if !id.IsCompanyUser() {
		return false
	}
	if id.CompanyID == nil || s == nil || s.CompanyID == nil {
		return false
	}
	return *s.CompanyID == *id.CompanyID
}

// CanAssignCompany reports whether id may attach or detach a shipment's
// owning company. Admin only.
func CanAssignCompany(id *identity.Identity) bool {
	return id.IsAdmin()
}

// CanChangeStatus reports whether id may transition s's status. Status
// changes are operations-staff territory: admin only, even when the company
// user would otherwise satisfy CanEditShipment.
func CanChangeStatus(id *identity.Identity, s *shipmentModel.Shipment) bool {
	return id.IsAdmin()
}

// CanViewShipment reports whether s appears in id's subscription scope.
func CanViewShipment(id *identity.Identity, s *shipmentModel.Shipment) bool {
	if id.IsAdmin() {
		return true
	}
	if !id.IsCompanyUser() || id.CompanyID == nil || s == nil || s.CompanyID == nil {
		return false
	}
	return *s.CompanyID == *id.CompanyID
}

// MutableFields enumerates the patch fields the given role may touch. The
// frontend uses it to decide which inputs to enable; the server-side check
// is Patch.TouchesRestrictedFields.
func MutableFields(role string) []string {
	if role == constants.RoleAdmin {
		return []string{
			"client_name", "operator_name", "origin", "destination",
			"planned_departure", "planned_arrival", "container_count",
			"status", "bl_number", "carrier", "booking_ref",
			"observations", "company_id",
		}
	}
	return []string{"observations"}
}

// ValidatePatch checks a patch against the role-scoped field whitelist and
// the structural invariants, before any merge happens.
func ValidatePatch(id *identity.Identity, s *shipmentModel.Shipment, patch *shipmentModel.Patch) error {
	if patch.TouchesRestrictedFields(id.Role) {
		return types.ErrForbidden
	}
	if patch.Status != nil && !CanChangeStatus(id, s) {
		return types.ErrForbidden
	}
	if (patch.CompanyID != nil || patch.ClearCompany) && !CanAssignCompany(id) {
		return types.ErrForbidden
	}
	return patch.Validate()
}
