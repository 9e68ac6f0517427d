package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gestion-service/internal/models"
	"gorm.io/gorm"
)

// NotificationsRepository persists the notification delivery log.
type NotificationsRepository struct {
	db *gorm.DB
}

func NewNotificationsRepository(db *gorm.DB) *NotificationsRepository {
	return &NotificationsRepository{db: db}
}

// CreateNotification records a pending delivery attempt.
func (r *NotificationsRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusPending
	}
	n.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(n).Error
}

// MarkSent flags a notification as delivered.
func (r *NotificationsRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": models.NotificationStatusSent, "sent_at": now}).Error
}

// MarkFailed flags a notification as failed with its error message.
func (r *NotificationsRepository) MarkFailed(ctx context.Context, id uuid.UUID, sendErr error) error {
	msg := sendErr.Error()
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": models.NotificationStatusFailed, "error": msg}).Error
}

// ListNotifications returns a filtered page of the delivery log, newest
// first.
func (r *NotificationsRepository) ListNotifications(ctx context.Context, req *models.NotificationListRequest) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if req.Channel != "" {
		query = query.Where("channel = ?", req.Channel)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	notifications := make([]models.Notification, 0)
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}
