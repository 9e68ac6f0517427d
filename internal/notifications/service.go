// Package notifications delivers email and WhatsApp messages and records
// every attempt in the notification log.
package notifications

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gestion-service/internal/models"
	"gestion-service/internal/repository"
)

// Sender is one delivery channel.
type Sender interface {
	Channel() string
	Send(recipient, subject, body string) error
}

// Service routes messages to the channel's sender and logs the outcome.
type Service struct {
	senders map[models.NotificationChannel]Sender
	repo    *repository.NotificationsRepository
	logger  *logrus.Entry
}

func NewService(repo *repository.NotificationsRepository, logger *logrus.Entry, senders ...Sender) *Service {
	byChannel := make(map[models.NotificationChannel]Sender, len(senders))
	for _, sender := range senders {
		byChannel[models.NotificationChannel(sender.Channel())] = sender
	}
	return &Service{senders: byChannel, repo: repo, logger: logger}
}

// Notify records and delivers one message. The log row is written before
// the delivery attempt so failed sends are still visible.
func (s *Service) Notify(ctx context.Context, channel models.NotificationChannel, recipient, subject, body string) (*models.Notification, error) {
	notification := &models.Notification{
		Channel:   channel,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}
	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("record notification: %w", err)
	}

	sender, ok := s.senders[channel]
	if !ok {
		err := fmt.Errorf("no sender configured for channel %s", channel)
		_ = s.repo.MarkFailed(ctx, notification.ID, err)
		return notification, err
	}

	if err := sender.Send(recipient, subject, body); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"channel":   channel,
				"recipient": recipient,
			}).Warn("Notification delivery failed")
		}
		_ = s.repo.MarkFailed(ctx, notification.ID, err)
		return notification, err
	}

	if err := s.repo.MarkSent(ctx, notification.ID); err != nil {
		return notification, err
	}
	notification.Status = models.NotificationStatusSent
	return notification, nil
}
