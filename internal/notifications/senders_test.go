package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailSender_UnconfiguredHost(t *testing.T) {
	sender := NewEmailSender(EmailConfig{})
	err := sender.Send("someone@example.com", "Hola", "Cuerpo")
	assert.Error(t, err)
}

func TestWhatsAppSender_SendsBearerTokenAndBody(t *testing.T) {
	var got whatsAppMessage
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWhatsAppSender(server.URL, "tok-123")
	err := sender.Send("+34600000000", "Recordatorio", "Cita mañana")

	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", auth)
	assert.Equal(t, "+34600000000", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "Recordatorio\nCita mañana", got.Text.Body)
}

func TestWhatsAppSender_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	sender := NewWhatsAppSender(server.URL, "tok-123")
	err := sender.Send("+34600000000", "", "Hola")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestWhatsAppSender_Unconfigured(t *testing.T) {
	sender := NewWhatsAppSender("", "")
	err := sender.Send("+34600000000", "", "Hola")
	assert.Error(t, err)
}
