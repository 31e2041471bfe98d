package shipment

// AssignCompanyRequest attaches or detaches a shipment's owning company.
type AssignCompanyRequest struct {
	CompanyID *uint `json:"company_id"`
}

// ChangeStatusRequest moves a shipment to a new lifecycle state.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// ListQuery carries the user-driven view filters for the shipment list.
// These are presentation concerns; the live snapshot ordering itself is
// always created_at desc and never re-sorted here.
type ListQuery struct {
	Search        string `query:"search"`
	DepartureFrom string `query:"departure_from"`
	DepartureTo   string `query:"departure_to"`
	SortKey       string `query:"sort_key"`
}
