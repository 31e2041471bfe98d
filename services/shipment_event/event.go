package shipment_event

import (
	shipmentModel "cargo-portal/models/shipment"

	"gorm.io/gorm"
)

// RecordTransition writes the audit row for a status transition inside the
// caller's transaction, so the transition and its trace commit together.
func RecordTransition(tx *gorm.DB, s *shipmentModel.Shipment, prev, next shipmentModel.Status, actorUID string) error {
	ev := shipmentModel.StatusEvent{
		ShipmentID:     s.ID,
		PreviousStatus: prev,
		NextStatus:     next,
		CreatedBy:      actorUID,
	}
	return tx.Create(&ev).Error
}

// History returns the transition rows for one shipment, newest first.
func History(db *gorm.DB, shipmentID string) ([]shipmentModel.StatusEvent, error) {
	var events []shipmentModel.StatusEvent
	err := db.Where("shipment_id = ?", shipmentID).
		Order("created_at desc").
		Find(&events).Error
	return events, err
}
