// Package workers provides background job processors for the service.
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gestion-service/internal/events"
	"gestion-service/internal/models"
	"gestion-service/internal/notifications"
	"gestion-service/internal/repository"
)

const (
	// DefaultReminderCheckInterval is the default interval between
	// reminder sweeps.
	DefaultReminderCheckInterval = 1 * time.Minute

	// ReminderBatchSize bounds how many due reminders one sweep handles.
	ReminderBatchSize = 50
)

// ReminderWorker periodically sweeps calendar events whose reminder is due
// and dispatches a notification for each one.
type ReminderWorker struct {
	calendar  *repository.CalendarRepository
	clients   *repository.ClientsRepository
	notifier  *notifications.Service
	publisher *events.Publisher
	logger    *logrus.Entry

	channel   models.NotificationChannel
	recipient string
	interval  time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.Mutex
	running  bool
	lastErr  error
}

// NewReminderWorker creates a reminder worker. Reminders go to the
// configured recipient (the shop's own inbox or phone); when the event is
// linked to a client with contact data, that client is addressed instead.
func NewReminderWorker(
	calendar *repository.CalendarRepository,
	clients *repository.ClientsRepository,
	notifier *notifications.Service,
	publisher *events.Publisher,
	logger *logrus.Entry,
	channel models.NotificationChannel,
	recipient string,
	interval time.Duration,
) *ReminderWorker {
	if interval <= 0 {
		interval = DefaultReminderCheckInterval
	}
	return &ReminderWorker{
		calendar:  calendar,
		clients:   clients,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		channel:   channel,
		recipient: recipient,
		interval:  interval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start begins the reminder sweep loop.
func (w *ReminderWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
	w.logger.WithField("interval", w.interval.String()).Info("Reminder worker started")
}

// Stop stops the sweep loop and waits for the current sweep to finish.
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	<-w.doneChan
	w.logger.Info("Reminder worker stopped")
}

// IsRunning returns whether the worker is running.
func (w *ReminderWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ReminderWorker) run() {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			if err := w.Sweep(context.Background()); err != nil {
				w.logger.WithError(err).Warn("Reminder sweep failed")
				w.mu.Lock()
				w.lastErr = err
				w.mu.Unlock()
			}
		}
	}
}

// Sweep dispatches every due reminder once. A failed send leaves the
// reminder armed so the next sweep retries it.
func (w *ReminderWorker) Sweep(ctx context.Context) error {
	due, err := w.calendar.DueReminders(ctx, time.Now(), ReminderBatchSize)
	if err != nil {
		return fmt.Errorf("fetch due reminders: %w", err)
	}

	for _, event := range due {
		recipient := w.resolveRecipient(ctx, &event)
		if recipient == "" {
			w.logger.WithField("event_id", event.ID).Warn("Reminder has no recipient, skipping")
			continue
		}

		subject := "Recordatorio: " + event.Title
		body := w.buildBody(&event)
		if _, err := w.notifier.Notify(ctx, w.channel, recipient, subject, body); err != nil {
			w.logger.WithError(err).WithField("event_id", event.ID).Warn("Reminder delivery failed")
			continue
		}

		if err := w.calendar.MarkReminderSent(ctx, event.ID); err != nil {
			w.logger.WithError(err).WithField("event_id", event.ID).Error("Failed to mark reminder sent")
			continue
		}
		w.publisher.Publish(events.SubjectReminderSent, event)
	}
	return nil
}

func (w *ReminderWorker) resolveRecipient(ctx context.Context, event *models.CalendarEvent) string {
	if event.ClientID != nil {
		if client, err := w.clients.GetClientByID(ctx, *event.ClientID); err == nil {
			switch w.channel {
			case models.NotificationChannelEmail:
				if client.Email != nil && *client.Email != "" {
					return *client.Email
				}
			case models.NotificationChannelWhatsApp:
				if client.Phone != nil && *client.Phone != "" {
					return *client.Phone
				}
			}
		}
	}
	return w.recipient
}

func (w *ReminderWorker) buildBody(event *models.CalendarEvent) string {
	body := fmt.Sprintf("%s\nFecha: %s", event.Title, event.StartsAt.Format("02/01/2006 15:04"))
	if event.Description != nil && *event.Description != "" {
		body += "\n\n" + *event.Description
	}
	return body
}
