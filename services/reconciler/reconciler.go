// Package reconciler maintains the live, render-ready shipment list for one
// client session on top of the store's snapshot pushes.
package reconciler

import (
	"sync"

	"cargo-portal/logger"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/services/shipmentstore"
)

// Reconciler folds the store's full-snapshot pushes into a single stable
// list. Swaps are atomic from the consumer's point of view; ordering is the
// adapter's (created_at desc) and is never re-sorted here.
type Reconciler struct {
	store shipmentstore.Store

	mu          sync.Mutex
	current     *identity.Identity
	snapshot    []shipmentModel.Shipment
	unsubscribe func()
	degraded    bool
	onChange    func([]shipmentModel.Shipment)
}

// New creates a reconciler. onChange, when non-nil, is invoked with each
// accepted snapshot after it has been swapped in.
func New(store shipmentstore.Store, onChange func([]shipmentModel.Shipment)) *Reconciler {
	return &Reconciler{store: store, onChange: onChange}
}

// SetIdentity switches the reconciler to a new identity. nil tears the
// subscription down and clears the list, so no stale data survives a
// logout. A scope change (different company) drops the old subscription
// and resubscribes; no incremental diff is attempted across scopes.
func (r *Reconciler) SetIdentity(id *identity.Identity) error {
	r.mu.Lock()
	if r.current.SameScope(id) && r.unsubscribe != nil {
		r.mu.Unlock()
		return nil
	}
	r.teardownLocked()
	r.current = id
	r.mu.Unlock()

	if id == nil {
		return nil
	}

	unsubscribe, err := r.store.Subscribe(id, r.accept)
	if err != nil {
		// Degraded: keep whatever was shown last instead of flashing empty.
		r.mu.Lock()
		r.degraded = true
		r.mu.Unlock()
		logger.Error("reconciler: subscribe failed, entering degraded state", err)
		return err
	}

	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.degraded = false
	r.mu.Unlock()
	return nil
}

// accept swaps a pushed snapshot in. The list is replaced wholesale under
// the lock; consumers never observe a partially merged state.
func (r *Reconciler) accept(snapshot []shipmentModel.Shipment) {
	r.mu.Lock()
	if r.unsubscribe == nil && r.current == nil {
		// Torn down between dispatch and delivery.
		r.mu.Unlock()
		return
	}
	r.snapshot = snapshot
	r.degraded = false
	onChange := r.onChange
	r.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
}

// Snapshot returns the current list. The slice is the last accepted push;
// callers must not mutate it.
func (r *Reconciler) Snapshot() []shipmentModel.Shipment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// Degraded reports whether the subscription is in a degraded state, serving
// the last good snapshot while the transport recovers.
func (r *Reconciler) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.degraded
}

// Close tears down the subscription and clears the list.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.teardownLocked()
	r.current = nil
	r.mu.Unlock()
}

func (r *Reconciler) teardownLocked() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.snapshot = nil
	r.degraded = false
}
