package mailer

// SendRequest is the relay's send payload.
type SendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendResponse is the relay's acknowledgement.
type SendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
