package shipmentstore

import (
	"context"
	"sort"
	"sync"
	"time"

	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/services/policy"
	"cargo-portal/types"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store with the same policy and subscription
// semantics as the database-backed one. Tests run against it.
type MemoryStore struct {
	mu        sync.RWMutex
	shipments map[string]shipmentModel.Shipment
	seq       map[string]int
	nextSeq   int
	events    []shipmentModel.StatusEvent

	hub *hub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shipments: make(map[string]shipmentModel.Shipment),
		seq:       make(map[string]int),
		hub:       newHub(),
	}
}

func (s *MemoryStore) RegisterCommitHook(hook CommitHook) {
	s.hub.registerHook(hook)
}

func (s *MemoryStore) Create(ctx context.Context, actor *identity.Identity, draft shipmentModel.Draft) (*shipmentModel.Shipment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if !policy.CanCreateShipment(actor) {
		return nil, types.ErrForbidden
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	record := shipmentModel.Shipment{
		ID:               uuid.NewString(),
		ClientName:       draft.ClientName,
		OperatorName:     draft.OperatorName,
		Origin:           draft.Origin,
		Destination:      draft.Destination,
		PlannedDeparture: draft.PlannedDeparture,
		PlannedArrival:   draft.PlannedArrival,
		ContainerCount:   draft.ContainerCount,
		Status:           draft.Status,
		BLNumber:         draft.BLNumber,
		Carrier:          draft.Carrier,
		BookingRef:       draft.BookingRef,
		Observations:     draft.Observations,
		CompanyID:        draft.CompanyID,
		CreatedBy:        actor.UID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	s.mu.Lock()
	s.shipments[record.ID] = record
	s.seq[record.ID] = s.nextSeq
	s.nextSeq++
	s.mu.Unlock()

	s.hub.fireHooks(CommitEvent{Op: OpCreated, Actor: actor, After: record})
	s.hub.broadcast(ctx, s.List)
	return &record, nil
}

func (s *MemoryStore) Update(ctx context.Context, actor *identity.Identity, shipmentID string, patch shipmentModel.Patch) (*shipmentModel.Shipment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	current, err := s.Get(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditShipment(actor, current) {
		return nil, types.ErrForbidden
	}
	if err := policy.ValidatePatch(actor, current, &patch); err != nil {
		return nil, err
	}

	merged := patch.Apply(*current)
	merged.UpdatedBy = actor.UID
	merged.UpdatedAt = time.Now()

	s.mu.Lock()
	s.shipments[merged.ID] = merged
	if patch.ChangesStatus(current.Status) {
		s.events = append(s.events, shipmentModel.StatusEvent{
			ShipmentID:     merged.ID,
			PreviousStatus: current.Status,
			NextStatus:     merged.Status,
			CreatedBy:      actor.UID,
			CreatedAt:      merged.UpdatedAt,
		})
	}
	s.mu.Unlock()

	s.hub.fireHooks(CommitEvent{Op: OpUpdated, Actor: actor, Before: current, After: merged})
	s.hub.broadcast(ctx, s.List)
	return &merged, nil
}

func (s *MemoryStore) Get(ctx context.Context, shipmentID string) (*shipmentModel.Shipment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.shipments[shipmentID]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &record, nil
}

func (s *MemoryStore) List(ctx context.Context, actor *identity.Identity) ([]shipmentModel.Shipment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []shipmentModel.Shipment{}
	for _, record := range s.shipments {
		rec := record
		if policy.CanViewShipment(actor, &rec) {
			result = append(result, rec)
		}
	}

	// created_at desc, insertion order as a stable tie break
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return s.seq[result[i].ID] > s.seq[result[j].ID]
	})
	return result, nil
}

func (s *MemoryStore) Subscribe(actor *identity.Identity, onChange func([]shipmentModel.Shipment)) (func(), error) {
	// Register before the initial query so a commit landing in between is
	// broadcast rather than missed.
	unsubscribe := s.hub.add(actor, onChange)
	initial, err := s.List(context.Background(), actor)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	onChange(initial)
	return unsubscribe, nil
}

// StatusEvents returns the recorded transitions, oldest first.
func (s *MemoryStore) StatusEvents() []shipmentModel.StatusEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]shipmentModel.StatusEvent, len(s.events))
	copy(out, s.events)
	return out
}
