package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppSender delivers messages through an HTTP messaging API.
type WhatsAppSender struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

func NewWhatsAppSender(apiURL, token string) *WhatsAppSender {
	return &WhatsAppSender{
		apiURL: apiURL,
		token:  token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Channel implements Sender.
func (s *WhatsAppSender) Channel() string { return "WHATSAPP" }

type whatsAppMessage struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Send posts one text message to the recipient phone number. The subject
// is prepended to the body since WhatsApp has no subject concept.
func (s *WhatsAppSender) Send(recipient, subject, body string) error {
	if s.apiURL == "" || s.token == "" {
		return fmt.Errorf("whatsapp api is not configured")
	}

	msg := whatsAppMessage{To: recipient, Type: "text"}
	if subject != "" {
		msg.Text.Body = subject + "\n" + body
	} else {
		msg.Text.Body = body
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
