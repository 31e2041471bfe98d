package company

// CreateRequest is the admin payload for creating a company.
type CreateRequest struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	ContactEmail string `json:"contact_email"`
}
