package stream

import (
	"context"
	"time"

	"cargo-portal/logger"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/identity"
	"cargo-portal/services/reconciler"
	"cargo-portal/services/shipmentstore"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamController pushes live shipment snapshots to connected clients.
type StreamController struct {
	Store    shipmentstore.Store
	Resolver *identity.Resolver
}

// NewStreamController creates a new stream controller
func NewStreamController(store shipmentstore.Store, resolver *identity.Resolver) *StreamController {
	return &StreamController{
		Store:    store,
		Resolver: resolver,
	}
}

// snapshotMessage is the frame sent for every accepted snapshot.
type snapshotMessage struct {
	Type      string                   `json:"type"`
	Shipments []shipmentModel.Shipment `json:"shipments"`
}

// Upgrade gates the websocket upgrade. Runs after RequireSession.
func (sc *StreamController) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Shipments is the live shipment feed for one client session. Each
// connection owns a reconciler; every accepted snapshot goes out as one
// frame. Identity is re-resolved periodically so deactivation or a company
// reassignment mid-session tears down or rescopes the feed.
func (sc *StreamController) Shipments() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		id, ok := conn.Locals("identity").(*identity.Identity)
		if !ok || id == nil {
			conn.Close()
			return
		}

		snapshots := make(chan []shipmentModel.Shipment, 8)
		rec := reconciler.New(sc.Store, func(snapshot []shipmentModel.Shipment) {
			select {
			case snapshots <- snapshot:
			default:
				// Slow client: drop the stale frame, a fresher one follows.
			}
		})
		defer rec.Close()

		if err := rec.SetIdentity(id); err != nil {
			logger.Error("stream: initial subscribe failed", err)
			conn.Close()
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		refresh := time.NewTicker(30 * time.Second)
		defer refresh.Stop()

		for {
			select {
			case snapshot := <-snapshots:
				if err := conn.WriteJSON(snapshotMessage{Type: "snapshot", Shipments: snapshot}); err != nil {
					return
				}

			case <-refresh.C:
				refreshed, err := sc.Resolver.Refresh(context.Background(), id)
				if err != nil {
					// Deactivated or removed mid-session: clear and drop.
					rec.SetIdentity(nil)
					conn.WriteJSON(snapshotMessage{Type: "snapshot", Shipments: []shipmentModel.Shipment{}})
					conn.Close()
					<-done
					return
				}
				if !id.SameScope(refreshed) {
					// Company changed while connected: resubscribe with the
					// new scope rather than diffing across scopes.
					if err := rec.SetIdentity(refreshed); err != nil {
						logger.Error("stream: resubscribe after scope change failed", err)
					}
				}
				id = refreshed

			case <-done:
				return
			}
		}
	})
}
