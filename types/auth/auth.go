package auth

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload. The first user registering a
// new company code creates that company and joins it as a company user.
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`
	CompanyCode  string `json:"company_code"`
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
}
