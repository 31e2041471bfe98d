package shipment

// Status is the closed enumeration of shipment lifecycle states.
type Status string

const (
	StatusScheduled     Status = "scheduled"
	StatusDocumentation Status = "documentation"
	StatusInTransit     Status = "in_transit"
	StatusCompleted     Status = "completed"
)

// Helper methods for Status
func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusDocumentation, StatusInTransit, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsFinal returns true if the shipment has reached a terminal state.
func (s Status) IsFinal() bool {
	return s == StatusCompleted
}

// CanBeUpdated returns true if the status still accepts transitions.
func (s Status) CanBeUpdated() bool {
	return !s.IsFinal()
}

// Label returns the display form shown in notifications and lists.
func (s Status) Label() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusDocumentation:
		return "Documentation"
	case StatusInTransit:
		return "In Transit"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// GetAllStatuses returns all valid shipment statuses.
func GetAllStatuses() []Status {
	return []Status{
		StatusScheduled,
		StatusDocumentation,
		StatusInTransit,
		StatusCompleted,
	}
}
