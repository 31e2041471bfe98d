// Package notifier turns committed shipment mutations into outbound email.
// It hangs off the store's post-commit hook, so a failing send can never
// roll back or fail the mutation that triggered it.
package notifier

import (
	"context"
	"fmt"

	"cargo-portal/logger"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/shipmentstore"
)

// Mailer is the one-shot notification transport. Delivery confirmation
// beyond the send result is not required.
type Mailer interface {
	Send(to, subject, body string) error
}

// CompanySource resolves the contact email for a company. An empty email
// with nil error means the company has no contact address.
type CompanySource interface {
	ContactEmail(ctx context.Context, companyID uint) (string, error)
}

// Notifier dispatches at most one notification per observed transition.
// Best effort by contract: failed sends are logged and dropped, retries
// belong to the mail transport.
type Notifier struct {
	mailer    Mailer
	companies CompanySource
}

func New(mailer Mailer, companies CompanySource) *Notifier {
	return &Notifier{mailer: mailer, companies: companies}
}

// Attach registers the notifier on the store's post-commit hook.
func (n *Notifier) Attach(store shipmentstore.Store) {
	store.RegisterCommitHook(n.HandleCommit)
}

// HandleCommit inspects one committed mutation and fires the matching
// notification, if any. It never returns an error: every failure path is
// logged and swallowed here.
func (n *Notifier) HandleCommit(ev shipmentstore.CommitEvent) {
	switch ev.Op {
	case shipmentstore.OpCreated:
		if ev.After.CompanyID == nil {
			return
		}
		n.dispatch(*ev.After.CompanyID,
			fmt.Sprintf("New shipment %s", ev.After.BookingRef),
			createdBody(&ev.After))

	case shipmentstore.OpUpdated:
		if ev.Before == nil || ev.Before.Status == ev.After.Status {
			return
		}
		if ev.After.CompanyID == nil {
			return
		}
		n.dispatch(*ev.After.CompanyID,
			fmt.Sprintf("Shipment %s is now %s", ev.After.BookingRef, ev.After.Status.Label()),
			transitionBody(ev.Before.Status, &ev.After))
	}
}

func (n *Notifier) dispatch(companyID uint, subject, body string) {
	email, err := n.companies.ContactEmail(context.Background(), companyID)
	if err != nil {
		// Unresolvable company is a skip, not a failure of the mutation.
		logger.Printf("notifier: could not resolve company %d, skipping notification: %v", companyID, err)
		return
	}
	if email == "" {
		logger.Printf("notifier: company %d has no contact email, skipping notification", companyID)
		return
	}
	if err := n.mailer.Send(email, subject, body); err != nil {
		logger.Error("notifier: failed to send notification", err)
	}
}

func createdBody(s *shipmentModel.Shipment) string {
	return fmt.Sprintf(
		"A new shipment has been registered for %s.\n\n"+
			"Reference: %s\nBL number: %s\nRoute: %s -> %s\nStatus: %s\n",
		s.ClientName, s.BookingRef, s.BLNumber, s.Origin, s.Destination, s.Status.Label())
}

func transitionBody(prev shipmentModel.Status, s *shipmentModel.Shipment) string {
	return fmt.Sprintf(
		"Shipment status has changed.\n\n"+
			"Reference: %s\nBL number: %s\nRoute: %s -> %s\n"+
			"Previous status: %s\nNew status: %s\n",
		s.BookingRef, s.BLNumber, s.Origin, s.Destination, prev.Label(), s.Status.Label())
}
