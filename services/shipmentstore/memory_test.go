package shipmentstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cargo-portal/constants"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func adminActor() *identity.Identity {
	return &identity.Identity{UID: "admin-1", Role: constants.RoleAdmin}
}

func companyActor(companyID uint) *identity.Identity {
	return &identity.Identity{UID: "user-1", Role: constants.RoleCompanyUser, CompanyID: uintPtr(companyID)}
}

func draftFor(client string) shipmentModel.Draft {
	return shipmentModel.Draft{
		ClientName:  client,
		Origin:      "Algeciras",
		Destination: "Rotterdam",
	}
}

func TestCreateAppliesDefaultsAndKeepsCompanyAbsent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, adminActor(), draftFor("Acme Trading"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	assert.Equal(t, shipmentModel.StatusScheduled, created.Status)
	assert.Equal(t, 1, created.ContainerCount)
	assert.Nil(t, created.CompanyID, "unassigned shipment must stay without a company")
	assert.Equal(t, "admin-1", created.CreatedBy)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Nil(t, got.CompanyID)
}

func TestCreateRejectsNonAdmin(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Create(context.Background(), companyActor(7), draftFor("Acme Trading"))
	assert.ErrorIs(t, err, types.ErrForbidden)

	list, err := store.List(context.Background(), adminActor())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateRejectsIncompleteDraft(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Create(context.Background(), adminActor(), shipmentModel.Draft{ClientName: "Acme Trading"})
	require.ErrorIs(t, err, types.ErrConflict)

	var conflict *types.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.ElementsMatch(t, []string{"origin", "destination"}, conflict.Fields)
}

func TestUpdateForbiddenLeavesRecordUntouched(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	draft := draftFor("Acme Trading")
	draft.CompanyID = uintPtr(7)
	created, err := store.Create(ctx, adminActor(), draft)
	require.NoError(t, err)

	obs := "should never land"
	_, err = store.Update(ctx, companyActor(8), created.ID, shipmentModel.Patch{Observations: &obs})
	assert.ErrorIs(t, err, types.ErrForbidden)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Observations)
	assert.Empty(t, got.UpdatedBy)
}

func TestUpdateConflictLeavesRecordUntouched(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, adminActor(), draftFor("Acme Trading"))
	require.NoError(t, err)

	empty := ""
	_, err = store.Update(ctx, adminActor(), created.ID, shipmentModel.Patch{Origin: &empty})
	assert.ErrorIs(t, err, types.ErrConflict)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algeciras", got.Origin)
}

func TestUpdateUnknownShipment(t *testing.T) {
	store := NewMemoryStore()

	obs := "nothing here"
	_, err := store.Update(context.Background(), adminActor(), "missing-id", shipmentModel.Patch{Observations: &obs})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestStatusTransitionRecordsEventAndFiresHook(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	actor := adminActor()

	var events []CommitEvent
	store.RegisterCommitHook(func(ev CommitEvent) { events = append(events, ev) })

	created, err := store.Create(ctx, actor, draftFor("Acme Trading"))
	require.NoError(t, err)

	next := shipmentModel.StatusInTransit
	updated, err := store.Update(ctx, actor, created.ID, shipmentModel.Patch{Status: &next})
	require.NoError(t, err)
	assert.Equal(t, shipmentModel.StatusInTransit, updated.Status)

	transitions := store.StatusEvents()
	require.Len(t, transitions, 1)
	assert.Equal(t, shipmentModel.StatusScheduled, transitions[0].PreviousStatus)
	assert.Equal(t, shipmentModel.StatusInTransit, transitions[0].NextStatus)
	assert.Equal(t, actor.UID, transitions[0].CreatedBy)

	require.Len(t, events, 2)
	assert.Equal(t, OpCreated, events[0].Op)
	assert.Nil(t, events[0].Before)
	assert.Equal(t, OpUpdated, events[1].Op)
	require.NotNil(t, events[1].Before)
	assert.Equal(t, shipmentModel.StatusScheduled, events[1].Before.Status)
	assert.Equal(t, shipmentModel.StatusInTransit, events[1].After.Status)
}

func TestSameStatusUpdateRecordsNoEvent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	actor := adminActor()

	created, err := store.Create(ctx, actor, draftFor("Acme Trading"))
	require.NoError(t, err)

	same := shipmentModel.StatusScheduled
	_, err = store.Update(ctx, actor, created.ID, shipmentModel.Patch{Status: &same})
	require.NoError(t, err)
	assert.Empty(t, store.StatusEvents())
}

func TestListScopesByCompanyPresence(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	admin := adminActor()

	owned := draftFor("Acme Trading")
	owned.CompanyID = uintPtr(7)
	_, err := store.Create(ctx, admin, owned)
	require.NoError(t, err)

	other := draftFor("Globex Freight")
	other.CompanyID = uintPtr(8)
	_, err = store.Create(ctx, admin, other)
	require.NoError(t, err)

	_, err = store.Create(ctx, admin, draftFor("Unassigned Cargo"))
	require.NoError(t, err)

	all, err := store.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := store.List(ctx, companyActor(7))
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Acme Trading", scoped[0].ClientName)
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	admin := adminActor()

	for _, client := range []string{"First", "Second", "Third"} {
		_, err := store.Create(ctx, admin, draftFor(client))
		require.NoError(t, err)
	}

	list, err := store.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Third", list[0].ClientName)
	assert.Equal(t, "First", list[2].ClientName)
}

func TestSubscribeDeliversInitialAndLiveSnapshots(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	admin := adminActor()

	var snapshots [][]shipmentModel.Shipment
	unsubscribe, err := store.Subscribe(admin, func(list []shipmentModel.Shipment) {
		snapshots = append(snapshots, list)
	})
	require.NoError(t, err)
	defer unsubscribe()

	// Initial snapshot arrives before Subscribe returns, empty store or not.
	require.Len(t, snapshots, 1)
	assert.Empty(t, snapshots[0])

	_, err = store.Create(ctx, admin, draftFor("Acme Trading"))
	require.NoError(t, err)

	require.Len(t, snapshots, 2)
	require.Len(t, snapshots[1], 1)
	assert.Equal(t, "Acme Trading", snapshots[1][0].ClientName)
}

func TestSubscribeScopesSnapshotsPerActor(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	admin := adminActor()

	var adminSnapshots, scopedSnapshots [][]shipmentModel.Shipment
	unsubAdmin, err := store.Subscribe(admin, func(list []shipmentModel.Shipment) {
		adminSnapshots = append(adminSnapshots, list)
	})
	require.NoError(t, err)
	defer unsubAdmin()

	unsubScoped, err := store.Subscribe(companyActor(7), func(list []shipmentModel.Shipment) {
		scopedSnapshots = append(scopedSnapshots, list)
	})
	require.NoError(t, err)
	defer unsubScoped()

	other := draftFor("Globex Freight")
	other.CompanyID = uintPtr(8)
	_, err = store.Create(ctx, admin, other)
	require.NoError(t, err)

	require.Len(t, adminSnapshots, 2)
	assert.Len(t, adminSnapshots[1], 1)

	// The company user's view stays empty: another company's shipment.
	require.Len(t, scopedSnapshots, 2)
	assert.Empty(t, scopedSnapshots[1])
}

func TestUnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	admin := adminActor()

	calls := 0
	unsubscribe, err := store.Subscribe(admin, func([]shipmentModel.Shipment) { calls++ })
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	unsubscribe()
	unsubscribe()

	_, err = store.Create(ctx, admin, draftFor("Acme Trading"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "no snapshots after unsubscribe")
}

func TestUnsubscribeOneOfTwoKeepsTheOtherAlive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	admin := adminActor()

	firstCalls, secondCalls := 0, 0
	unsubFirst, err := store.Subscribe(admin, func([]shipmentModel.Shipment) { firstCalls++ })
	require.NoError(t, err)
	unsubSecond, err := store.Subscribe(admin, func([]shipmentModel.Shipment) { secondCalls++ })
	require.NoError(t, err)
	defer unsubSecond()

	require.Equal(t, 1, firstCalls)
	require.Equal(t, 1, secondCalls)

	unsubFirst()

	_, err = store.Create(ctx, admin, draftFor("Acme Trading"))
	require.NoError(t, err)

	assert.Equal(t, 1, firstCalls, "dropped subscription stays silent")
	assert.Equal(t, 2, secondCalls, "surviving subscription keeps receiving")
}

func TestCommitDuringSubscribeIsNotLost(t *testing.T) {
	admin := adminActor()

	// A commit racing the subscribe handshake must show up in some delivered
	// snapshot, either the broadcast or the initial query.
	for i := 0; i < 50; i++ {
		store := NewMemoryStore()

		var mu sync.Mutex
		var snapshots [][]shipmentModel.Shipment

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(context.Background(), admin, draftFor("Acme Trading"))
			assert.NoError(t, err)
		}()

		unsubscribe, err := store.Subscribe(admin, func(list []shipmentModel.Shipment) {
			mu.Lock()
			snapshots = append(snapshots, list)
			mu.Unlock()
		})
		require.NoError(t, err)
		wg.Wait()
		unsubscribe()

		seen := false
		mu.Lock()
		for _, list := range snapshots {
			if len(list) == 1 {
				seen = true
			}
		}
		mu.Unlock()
		assert.True(t, seen, "subscriber never observed the racing commit")
	}
}

func TestHookPanicDoesNotReachCaller(t *testing.T) {
	store := NewMemoryStore()
	store.RegisterCommitHook(func(CommitEvent) { panic("listener blew up") })

	created, err := store.Create(context.Background(), adminActor(), draftFor("Acme Trading"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}
