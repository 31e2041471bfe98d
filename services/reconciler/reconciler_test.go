package reconciler

import (
	"context"
	"errors"
	"testing"

	"cargo-portal/constants"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/services/shipmentstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func adminIdentity() *identity.Identity {
	return &identity.Identity{UID: "admin-1", Role: constants.RoleAdmin}
}

func companyIdentity(uid string, companyID uint) *identity.Identity {
	return &identity.Identity{UID: uid, Role: constants.RoleCompanyUser, CompanyID: uintPtr(companyID)}
}

func seedShipment(t *testing.T, store *shipmentstore.MemoryStore, client string, companyID *uint) *shipmentModel.Shipment {
	t.Helper()
	created, err := store.Create(context.Background(), adminIdentity(), shipmentModel.Draft{
		ClientName:  client,
		Origin:      "Algeciras",
		Destination: "Rotterdam",
		CompanyID:   companyID,
	})
	require.NoError(t, err)
	return created
}

// brokenStore wraps the in-memory store with a failing live query, to force
// the degraded path.
type brokenStore struct {
	*shipmentstore.MemoryStore
}

func (s *brokenStore) Subscribe(*identity.Identity, func([]shipmentModel.Shipment)) (func(), error) {
	return nil, errors.New("live query unavailable")
}

func TestSetIdentityLoadsInitialSnapshot(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	seedShipment(t, store, "Acme Trading", nil)

	r := New(store, nil)
	defer r.Close()

	require.NoError(t, r.SetIdentity(adminIdentity()))
	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Acme Trading", snapshot[0].ClientName)
	assert.False(t, r.Degraded())
}

func TestCommittedChangeSwapsSnapshot(t *testing.T) {
	store := shipmentstore.NewMemoryStore()

	var pushes int
	r := New(store, func([]shipmentModel.Shipment) { pushes++ })
	defer r.Close()

	require.NoError(t, r.SetIdentity(adminIdentity()))
	require.Equal(t, 1, pushes)
	assert.Empty(t, r.Snapshot())

	seedShipment(t, store, "Acme Trading", nil)

	assert.Equal(t, 2, pushes)
	require.Len(t, r.Snapshot(), 1)
	assert.Equal(t, "Acme Trading", r.Snapshot()[0].ClientName)
}

func TestNilIdentityClearsListAndStopsDelivery(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	seedShipment(t, store, "Acme Trading", nil)

	r := New(store, nil)
	require.NoError(t, r.SetIdentity(adminIdentity()))
	require.Len(t, r.Snapshot(), 1)

	require.NoError(t, r.SetIdentity(nil))
	assert.Empty(t, r.Snapshot(), "logout leaves no stale shipments behind")

	seedShipment(t, store, "Globex Freight", nil)
	assert.Empty(t, r.Snapshot())
}

func TestSameScopeIdentityKeepsSubscription(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	seedShipment(t, store, "Acme Trading", uintPtr(7))

	var pushes int
	r := New(store, func([]shipmentModel.Shipment) { pushes++ })
	defer r.Close()

	require.NoError(t, r.SetIdentity(companyIdentity("user-1", 7)))
	require.Equal(t, 1, pushes)

	// Refreshed identity, same company: no teardown, no extra initial push.
	refreshed := companyIdentity("user-1", 7)
	refreshed.DisplayName = "Renamed User"
	require.NoError(t, r.SetIdentity(refreshed))
	assert.Equal(t, 1, pushes)
	assert.Len(t, r.Snapshot(), 1)
}

func TestScopeChangeResubscribes(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	seedShipment(t, store, "Acme Trading", uintPtr(7))
	seedShipment(t, store, "Globex Freight", uintPtr(8))

	r := New(store, nil)
	defer r.Close()

	require.NoError(t, r.SetIdentity(companyIdentity("user-1", 7)))
	require.Len(t, r.Snapshot(), 1)
	assert.Equal(t, "Acme Trading", r.Snapshot()[0].ClientName)

	require.NoError(t, r.SetIdentity(companyIdentity("user-1", 8)))
	require.Len(t, r.Snapshot(), 1)
	assert.Equal(t, "Globex Freight", r.Snapshot()[0].ClientName)
}

func TestFailedSubscribeEntersDegradedState(t *testing.T) {
	store := &brokenStore{MemoryStore: shipmentstore.NewMemoryStore()}

	r := New(store, nil)
	defer r.Close()

	err := r.SetIdentity(adminIdentity())
	require.Error(t, err)
	assert.True(t, r.Degraded())
	assert.Empty(t, r.Snapshot())
}

func TestCloseTearsDown(t *testing.T) {
	store := shipmentstore.NewMemoryStore()
	seedShipment(t, store, "Acme Trading", nil)

	r := New(store, nil)
	require.NoError(t, r.SetIdentity(adminIdentity()))
	require.Len(t, r.Snapshot(), 1)

	r.Close()
	assert.Empty(t, r.Snapshot())

	seedShipment(t, store, "Globex Freight", nil)
	assert.Empty(t, r.Snapshot())
}
