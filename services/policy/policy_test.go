package policy

import (
	"errors"
	"testing"

	"cargo-portal/constants"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func admin() *identity.Identity {
	return &identity.Identity{UID: "admin-1", Role: constants.RoleAdmin}
}

func companyUser(companyID *uint) *identity.Identity {
	return &identity.Identity{UID: "user-1", Role: constants.RoleCompanyUser, CompanyID: companyID}
}

func ownedShipment(companyID *uint) *shipmentModel.Shipment {
	return &shipmentModel.Shipment{ID: "shp-1", ClientName: "Acme Trading", CompanyID: companyID}
}

func TestCanCreateShipment(t *testing.T) {
	assert.True(t, CanCreateShipment(admin()))
	assert.False(t, CanCreateShipment(companyUser(uintPtr(1))))
}

func TestCanEditShipment(t *testing.T) {
	tests := []struct {
		name     string
		actor    *identity.Identity
		shipment *shipmentModel.Shipment
		want     bool
	}{
		{"admin edits anything", admin(), ownedShipment(nil), true},
		{"admin edits owned", admin(), ownedShipment(uintPtr(7)), true},
		{"company user edits own company shipment", companyUser(uintPtr(7)), ownedShipment(uintPtr(7)), true},
		{"company user cannot edit other company", companyUser(uintPtr(7)), ownedShipment(uintPtr(8)), false},
		{"company user cannot edit unassigned", companyUser(uintPtr(7)), ownedShipment(nil), false},
		{"company user without company cannot edit", companyUser(nil), ownedShipment(uintPtr(7)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditShipment(tt.actor, tt.shipment))
		})
	}
}

func TestCanAssignCompanyAndChangeStatus(t *testing.T) {
	shp := ownedShipment(uintPtr(7))

	assert.True(t, CanAssignCompany(admin()))
	assert.False(t, CanAssignCompany(companyUser(uintPtr(7))))

	// Status stays admin-only even when the company user may edit.
	assert.True(t, CanChangeStatus(admin(), shp))
	assert.True(t, CanEditShipment(companyUser(uintPtr(7)), shp))
	assert.False(t, CanChangeStatus(companyUser(uintPtr(7)), shp))
}

func TestCanViewShipment(t *testing.T) {
	assert.True(t, CanViewShipment(admin(), ownedShipment(nil)))
	assert.True(t, CanViewShipment(companyUser(uintPtr(7)), ownedShipment(uintPtr(7))))
	assert.False(t, CanViewShipment(companyUser(uintPtr(7)), ownedShipment(uintPtr(8))))
	// Unassigned shipments are admin-only.
	assert.False(t, CanViewShipment(companyUser(uintPtr(7)), ownedShipment(nil)))
}

func TestValidatePatchRoleWhitelist(t *testing.T) {
	shp := ownedShipment(uintPtr(7))
	actor := companyUser(uintPtr(7))

	obs := "left warehouse late"
	err := ValidatePatch(actor, shp, &shipmentModel.Patch{Observations: &obs})
	require.NoError(t, err)

	origin := "Valencia"
	err = ValidatePatch(actor, shp, &shipmentModel.Patch{Origin: &origin})
	assert.ErrorIs(t, err, types.ErrForbidden)

	status := shipmentModel.StatusInTransit
	err = ValidatePatch(actor, shp, &shipmentModel.Patch{Status: &status})
	assert.ErrorIs(t, err, types.ErrForbidden)

	err = ValidatePatch(actor, shp, &shipmentModel.Patch{CompanyID: uintPtr(9)})
	assert.ErrorIs(t, err, types.ErrForbidden)
}

func TestMutableFields(t *testing.T) {
	assert.Equal(t, []string{"observations"}, MutableFields(constants.RoleCompanyUser))
	assert.Contains(t, MutableFields(constants.RoleAdmin), "status")
	assert.Contains(t, MutableFields(constants.RoleAdmin), "company_id")
}

func TestValidatePatchStructuralConflicts(t *testing.T) {
	shp := ownedShipment(uintPtr(7))
	empty := ""
	zero := 0

	err := ValidatePatch(admin(), shp, &shipmentModel.Patch{ClientName: &empty, ContainerCount: &zero})
	require.ErrorIs(t, err, types.ErrConflict)

	var conflict *types.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.ElementsMatch(t, []string{"client_name", "container_count"}, conflict.Fields)
}
