// Package events publishes domain events to NATS for downstream audit and
// integration consumers. Publishing is best-effort: a nil Publisher (NATS
// not configured) is safe to call and does nothing.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Subjects emitted by the service.
const (
	SubjectPriceImportCompleted = "gestion.prices.import.completed"
	SubjectClientCreated        = "gestion.clients.created"
	SubjectClientDeleted        = "gestion.clients.deleted"
	SubjectBudgetStatusChanged  = "gestion.budgets.status_changed"
	SubjectWorkStatusChanged    = "gestion.works.status_changed"
	SubjectReminderSent         = "gestion.calendar.reminder_sent"
)

// Event is the envelope every published message shares.
type Event struct {
	ID        string      `json:"id"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Publisher wraps a NATS connection for the service's domain events.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to NATS with resilient reconnect options.
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	entry := logrus.NewEntry(logger).WithField("component", "events")

	conn, err := nats.Connect(natsURL,
		nats.Name("gestion-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			entry.WithField("url", nc.ConnectedUrl()).Info("Reconnected to NATS")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			entry.WithError(err).Warn("Disconnected from NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &Publisher{conn: conn, logger: entry}, nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}

// Publish sends one event. Failures are logged, never propagated: event
// delivery must not fail the request that produced it.
func (p *Publisher) Publish(subject string, data interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	event := Event{
		ID:        uuid.New().String(),
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to encode event")
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}

// PriceImportCompletedData summarizes one resolved price batch.
type PriceImportCompletedData struct {
	Entries int      `json:"entries"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// PublishPriceImportCompleted emits the outcome of one update-prices batch.
func (p *Publisher) PublishPriceImportCompleted(entries, updated int, errs []string) {
	p.Publish(SubjectPriceImportCompleted, PriceImportCompletedData{
		Entries: entries,
		Updated: updated,
		Errors:  errs,
	})
}
