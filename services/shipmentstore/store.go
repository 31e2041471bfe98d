// Package shipmentstore is the adapter over the shipment collection. It
// gates every mutation behind the access policy, emits post-commit events
// for side-effect listeners and feeds scoped live snapshots to subscribers.
package shipmentstore

import (
	"context"
	"sync"

	"cargo-portal/logger"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
)

// CommitOp identifies the kind of committed mutation.
type CommitOp string

const (
	OpCreated CommitOp = "created"
	OpUpdated CommitOp = "updated"
)

// CommitEvent describes one durably committed mutation. Before is nil for
// creates. Hooks receive it only after the write has been acknowledged.
type CommitEvent struct {
	Op     CommitOp
	Actor  *identity.Identity
	Before *shipmentModel.Shipment
	After  shipmentModel.Shipment
}

// CommitHook is a post-commit listener. Hooks run after the primary
// mutation is durable; a failing or panicking hook never reaches the
// mutation caller.
type CommitHook func(CommitEvent)

// Store is the adapter contract consumed by controllers, the reconciler
// and the spreadsheet bridge.
type Store interface {
	// Create persists a new shipment for an admin actor. The company
	// reference is stored only when present; an unassigned shipment keeps
	// the column NULL so scoped queries filter by presence.
	Create(ctx context.Context, actor *identity.Identity, draft shipmentModel.Draft) (*shipmentModel.Shipment, error)

	// Update reads the current record, checks policy, validates and merges
	// the patch and commits. Fails with ErrNotFound, ErrForbidden or
	// ErrConflict without touching the record.
	Update(ctx context.Context, actor *identity.Identity, shipmentID string, patch shipmentModel.Patch) (*shipmentModel.Shipment, error)

	// Get returns one shipment or ErrNotFound.
	Get(ctx context.Context, shipmentID string) (*shipmentModel.Shipment, error)

	// List returns the actor-scoped snapshot ordered by created_at desc.
	List(ctx context.Context, actor *identity.Identity) ([]shipmentModel.Shipment, error)

	// Subscribe opens a live scoped query. onChange receives the full
	// ordered snapshot on every committed change, starting with an initial
	// snapshot (possibly empty) before Subscribe returns. The returned
	// unsubscribe is idempotent and stops further delivery immediately.
	Subscribe(actor *identity.Identity, onChange func([]shipmentModel.Shipment)) (func(), error)

	// RegisterCommitHook attaches a post-commit listener.
	RegisterCommitHook(hook CommitHook)
}

// hub carries the subscriber registry and commit hooks shared by the
// database and in-memory store implementations.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
	hooks  []CommitHook
}

type subscriber struct {
	actor    *identity.Identity
	onChange func([]shipmentModel.Shipment)
}

func newHub() *hub {
	return &hub{subs: make(map[int]*subscriber)}
}

func (h *hub) registerHook(hook CommitHook) {
	h.mu.Lock()
	h.hooks = append(h.hooks, hook)
	h.mu.Unlock()
}

// add registers a subscriber and returns its idempotent unsubscribe.
func (h *hub) add(actor *identity.Identity, onChange func([]shipmentModel.Shipment)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = &subscriber{actor: actor, onChange: onChange}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// fireHooks runs every commit hook for ev. Hook panics are contained here;
// the mutation has already been committed and acknowledged.
func (h *hub) fireHooks(ev CommitEvent) {
	h.mu.Lock()
	hooks := make([]CommitHook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	for _, hook := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Printf("commit hook panicked: %v", r)
				}
			}()
			hook(ev)
		}()
	}
}

// broadcast pushes a fresh scoped snapshot to every subscriber. list is the
// implementation's scoped query. A failing query degrades that subscriber
// silently: it keeps its last good snapshot instead of flashing empty.
func (h *hub) broadcast(ctx context.Context, list func(context.Context, *identity.Identity) ([]shipmentModel.Shipment, error)) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		snapshot, err := list(ctx, s.actor)
		if err != nil {
			logger.Error("failed to build subscriber snapshot, keeping last good one", err)
			continue
		}
		s.onChange(snapshot)
	}
}
