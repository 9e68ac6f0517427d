package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationChannel selects the delivery mechanism.
type NotificationChannel string

const (
	NotificationChannelEmail    NotificationChannel = "EMAIL"
	NotificationChannelWhatsApp NotificationChannel = "WHATSAPP"
)

// NotificationStatus tracks delivery state.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification is a delivery log row; every send attempt is recorded.
type Notification struct {
	ID        uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Channel   NotificationChannel `json:"channel" gorm:"type:varchar(16);not null"`
	Recipient string              `json:"recipient" gorm:"type:varchar(255);not null"`
	Subject   string              `json:"subject" gorm:"type:varchar(255)"`
	Body      string              `json:"body" gorm:"type:text"`
	Status    NotificationStatus  `json:"status" gorm:"type:varchar(16);not null;default:'PENDING'"`
	Error     *string             `json:"error,omitempty" gorm:"type:text"`
	SentAt    *time.Time          `json:"sentAt,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

// TableName returns the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}

// SendNotificationRequest is the payload for sending an ad-hoc notification.
type SendNotificationRequest struct {
	Channel   NotificationChannel `json:"channel" binding:"required"`
	Recipient string              `json:"recipient" binding:"required"`
	Subject   string              `json:"subject"`
	Body      string              `json:"body" binding:"required"`
}

// NotificationListRequest carries list filters for the notification log.
type NotificationListRequest struct {
	Channel string `form:"channel"`
	Status  string `form:"status"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}
