package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cargo-portal/types"
)

// Client talks to the mail relay. The relay owns delivery and retries; this
// client only reports whether the send call was accepted.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// Send posts one message to the relay.
func (c *Client) Send(to, subject, body string) error {
	payload, err := json.Marshal(SendRequest{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/mail/send", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: mail relay returned %s", types.ErrTransport, resp.Status)
	}

	var apiResp SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return err
	}
	if apiResp.Status != "ok" && apiResp.Status != "sent" && apiResp.Status != "queued" {
		return errors.New("mail relay rejected message: " + apiResp.Message)
	}
	return nil
}
