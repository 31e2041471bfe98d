package sheetbridge

import (
	"context"
	"strings"
	"testing"

	"cargo-portal/constants"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/services/shipmentstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvHeader = "booking_ref,client_name,operator_name,origin,destination,planned_departure,planned_arrival,container_count,status,bl_number,carrier\n"

func adminActor() *identity.Identity {
	return &identity.Identity{UID: "admin-1", Role: constants.RoleAdmin}
}

func TestParseCSV(t *testing.T) {
	input := csvHeader +
		"BK-1001,Acme Trading,Maria Lopez,Algeciras,Rotterdam,2026-09-14,2026-09-21,3,in_transit,BL-889,Maersk\n" +
		"BK-1002,Globex Freight,,Valencia,Hamburg,,,,,,\n"

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "BK-1001", first.BookingRef)
	assert.Equal(t, "Acme Trading", first.ClientName)
	assert.Equal(t, 3, first.ContainerCount)
	assert.Equal(t, shipmentModel.StatusInTransit, first.Status)
	require.NotNil(t, first.PlannedDeparture)
	assert.Equal(t, "2026-09-14", first.PlannedDeparture.Format("2006-01-02"))

	second := rows[1]
	assert.Equal(t, "BK-1002", second.BookingRef)
	assert.Nil(t, second.PlannedDeparture)
	assert.Zero(t, second.ContainerCount)
	assert.Empty(t, second.Status)
}

func TestParseCSVRejectsWrongHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("ref,name\nBK-1,Acme\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestParseCSVReportsBadRowWithLine(t *testing.T) {
	input := csvHeader +
		"BK-1001,Acme Trading,,Algeciras,Rotterdam,,,,parked,,\n"

	_, err := ParseCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "status")
}

func TestParseCSVRequiresBookingRef(t *testing.T) {
	input := csvHeader +
		",Acme Trading,,Algeciras,Rotterdam,,,,,,\n"

	_, err := ParseCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking_ref")
}

func TestImportCreatesAndUpdatesByBookingRef(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	ctx := context.Background()
	admin := adminActor()

	existing, err := store.Create(ctx, admin, shipmentModel.Draft{
		ClientName:  "Acme Trading",
		Origin:      "Algeciras",
		Destination: "Rotterdam",
		BookingRef:  "BK-1001",
	})
	require.NoError(t, err)
	require.Equal(t, shipmentModel.StatusScheduled, existing.Status)

	rows := []Row{
		{BookingRef: "BK-1001", Status: shipmentModel.StatusInTransit, Carrier: "Maersk"},
		{BookingRef: "BK-2002", ClientName: "Globex Freight", Origin: "Valencia", Destination: "Hamburg"},
	}

	res := NewImporter(store).Import(ctx, admin, rows)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Errors)

	updated, err := store.Get(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, shipmentModel.StatusInTransit, updated.Status)
	assert.Equal(t, "Maersk", updated.Carrier)

	// The replayed status change is audited like any direct mutation.
	events := store.StatusEvents()
	require.Len(t, events, 1)
	assert.Equal(t, shipmentModel.StatusInTransit, events[0].NextStatus)

	list, err := store.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestImportCountsUnchangedRowAsUpdated(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	ctx := context.Background()
	admin := adminActor()

	_, err := store.Create(ctx, admin, shipmentModel.Draft{
		ClientName:  "Acme Trading",
		Origin:      "Algeciras",
		Destination: "Rotterdam",
		BookingRef:  "BK-1001",
	})
	require.NoError(t, err)

	res := NewImporter(store).Import(ctx, admin, []Row{
		{BookingRef: "BK-1001", ClientName: "Acme Trading", Origin: "Algeciras", Destination: "Rotterdam"},
	})
	assert.Equal(t, 1, res.Updated)
	assert.Zero(t, res.Created)
	assert.Empty(t, store.StatusEvents())
}

func TestImportSkipsPolicyRejectedRows(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	companyUser := &identity.Identity{UID: "user-1", Role: constants.RoleCompanyUser}

	res := NewImporter(store).Import(context.Background(), companyUser, []Row{
		{BookingRef: "BK-1001", ClientName: "Acme Trading", Origin: "Algeciras", Destination: "Rotterdam"},
	})
	assert.Zero(t, res.Created)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "BK-1001")
}

func TestImportSkipsStructurallyInvalidRows(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	admin := adminActor()

	res := NewImporter(store).Import(context.Background(), admin, []Row{
		{BookingRef: "BK-1001"}, // no client, origin or destination
		{BookingRef: "BK-2002", ClientName: "Globex Freight", Origin: "Valencia", Destination: "Hamburg"},
	})
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "BK-1001")
}
