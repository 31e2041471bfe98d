package shipment

import (
	"errors"
	"testing"
	"time"

	"cargo-portal/constants"
	"cargo-portal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestStatusIsValid(t *testing.T) {
	for _, s := range GetAllStatuses() {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, Status("parked").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatusLabelAndFinal(t *testing.T) {
	assert.Equal(t, "In Transit", StatusInTransit.Label())
	assert.True(t, StatusCompleted.IsFinal())
	assert.False(t, StatusInTransit.IsFinal())
	assert.False(t, StatusCompleted.CanBeUpdated())
	assert.True(t, StatusScheduled.CanBeUpdated())
}

func TestDraftNormalizeDefaults(t *testing.T) {
	d := Draft{ClientName: "Acme Trading", Origin: "Algeciras", Destination: "Rotterdam"}
	d.Normalize()
	assert.Equal(t, StatusScheduled, d.Status)
	assert.Equal(t, 1, d.ContainerCount)

	// Explicit values survive normalization.
	d2 := Draft{Status: StatusInTransit, ContainerCount: 4}
	d2.Normalize()
	assert.Equal(t, StatusInTransit, d2.Status)
	assert.Equal(t, 4, d2.ContainerCount)
}

func TestDraftValidateCollectsAllConflicts(t *testing.T) {
	d := Draft{ContainerCount: -1, Status: Status("parked")}
	err := d.Validate()
	require.ErrorIs(t, err, types.ErrConflict)

	var conflict *types.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.ElementsMatch(t,
		[]string{"client_name", "origin", "destination", "container_count", "status"},
		conflict.Fields)
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, (&Patch{}).IsEmpty())

	obs := "customs hold"
	assert.False(t, (&Patch{Observations: &obs}).IsEmpty())
	assert.False(t, (&Patch{ClearCompany: true}).IsEmpty())
}

func TestPatchChangesStatus(t *testing.T) {
	next := StatusInTransit
	assert.True(t, (&Patch{Status: &next}).ChangesStatus(StatusScheduled))
	assert.False(t, (&Patch{Status: &next}).ChangesStatus(StatusInTransit))
	assert.False(t, (&Patch{}).ChangesStatus(StatusScheduled))
}

func TestPatchRestrictedFieldsByRole(t *testing.T) {
	origin := "Valencia"
	obs := "left late"

	assert.False(t, (&Patch{Origin: &origin}).TouchesRestrictedFields(constants.RoleAdmin))
	assert.True(t, (&Patch{Origin: &origin}).TouchesRestrictedFields(constants.RoleCompanyUser))
	assert.False(t, (&Patch{Observations: &obs}).TouchesRestrictedFields(constants.RoleCompanyUser))
	assert.True(t, (&Patch{ClearCompany: true}).TouchesRestrictedFields(constants.RoleCompanyUser))
}

func TestPatchValidateRejectsCompanySetAndClear(t *testing.T) {
	err := (&Patch{CompanyID: uintPtr(7), ClearCompany: true}).Validate()
	require.ErrorIs(t, err, types.ErrConflict)

	var conflict *types.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Contains(t, conflict.Fields, "company_id")
}

func TestPatchApplyMergesOntoCopy(t *testing.T) {
	departure := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	original := Shipment{
		ID:         "shp-1",
		ClientName: "Acme Trading",
		Origin:     "Algeciras",
		Status:     StatusScheduled,
		CompanyID:  uintPtr(7),
	}

	next := StatusInTransit
	carrier := "Maersk"
	merged := (&Patch{Status: &next, Carrier: &carrier, PlannedDeparture: &departure}).Apply(original)

	assert.Equal(t, StatusInTransit, merged.Status)
	assert.Equal(t, "Maersk", merged.Carrier)
	require.NotNil(t, merged.PlannedDeparture)
	assert.Equal(t, "Acme Trading", merged.ClientName)

	// Apply works on a copy; the source record is untouched.
	assert.Equal(t, StatusScheduled, original.Status)
	assert.Empty(t, original.Carrier)
}

func TestPatchApplyClearCompany(t *testing.T) {
	original := Shipment{ID: "shp-1", CompanyID: uintPtr(7)}
	merged := (&Patch{ClearCompany: true}).Apply(original)
	assert.Nil(t, merged.CompanyID)
	require.NotNil(t, original.CompanyID)
}
