package shipmentstore

import (
	"context"
	"errors"
	"fmt"

	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/services/policy"
	"cargo-portal/services/shipment_event"
	"cargo-portal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore is the Postgres-backed store adapter.
type GormStore struct {
	db  *gorm.DB
	hub *hub
}

// NewGormStore creates the database-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, hub: newHub()}
}

func (s *GormStore) RegisterCommitHook(hook CommitHook) {
	s.hub.registerHook(hook)
}

func (s *GormStore) Create(ctx context.Context, actor *identity.Identity, draft shipmentModel.Draft) (*shipmentModel.Shipment, error) {
	// Policy first: fail fast with zero side effects.
	if !policy.CanCreateShipment(actor) {
		return nil, types.ErrForbidden
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

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
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTransport, err)
	}

	s.hub.fireHooks(CommitEvent{Op: OpCreated, Actor: actor, After: record})
	s.hub.broadcast(ctx, s.List)
	return &record, nil
}

func (s *GormStore) Update(ctx context.Context, actor *identity.Identity, shipmentID string, patch shipmentModel.Patch) (*shipmentModel.Shipment, error) {
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

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&merged).Error; err != nil {
			return err
		}
		if patch.ChangesStatus(current.Status) {
			return shipment_event.RecordTransition(tx, &merged, current.Status, merged.Status, actor.UID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTransport, err)
	}

	s.hub.fireHooks(CommitEvent{Op: OpUpdated, Actor: actor, Before: current, After: merged})
	s.hub.broadcast(ctx, s.List)
	return &merged, nil
}

func (s *GormStore) Get(ctx context.Context, shipmentID string) (*shipmentModel.Shipment, error) {
	var record shipmentModel.Shipment
	err := s.db.WithContext(ctx).Where("id = ?", shipmentID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTransport, err)
	}
	return &record, nil
}

// List returns the actor-scoped snapshot, created_at desc. A company user
// without a company sees an empty list rather than an error.
func (s *GormStore) List(ctx context.Context, actor *identity.Identity) ([]shipmentModel.Shipment, error) {
	q := s.db.WithContext(ctx).Model(&shipmentModel.Shipment{}).Order("created_at desc, id desc")

	switch {
	case actor.IsAdmin():
		// unscoped
	case actor.IsCompanyUser() && actor.CompanyID != nil:
		q = q.Where("company_id = ?", *actor.CompanyID)
	default:
		return []shipmentModel.Shipment{}, nil
	}

	var records []shipmentModel.Shipment
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTransport, err)
	}
	if records == nil {
		records = []shipmentModel.Shipment{}
	}
	return records, nil
}

func (s *GormStore) Subscribe(actor *identity.Identity, onChange func([]shipmentModel.Shipment)) (func(), error) {
	// Register before the initial query so a commit landing in between is
	// broadcast rather than missed.
	unsubscribe := s.hub.add(actor, onChange)
	initial, err := s.List(context.Background(), actor)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	// Initial snapshot is delivered even when empty.
	onChange(initial)
	return unsubscribe, nil
}
