package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalendarEvent is an appointment, optionally linked to a client or a work
// and optionally carrying a reminder the worker dispatches when due.
type CalendarEvent struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title        string         `json:"title" gorm:"type:varchar(255);not null"`
	Description  *string        `json:"description,omitempty" gorm:"type:text"`
	StartsAt     time.Time      `json:"startsAt" gorm:"not null;index"`
	EndsAt       *time.Time     `json:"endsAt,omitempty"`
	RemindAt     *time.Time     `json:"remindAt,omitempty" gorm:"index"`
	ReminderSent bool           `json:"reminderSent" gorm:"not null;default:false"`
	ClientID     *uuid.UUID     `json:"clientId,omitempty" gorm:"type:uuid;index"`
	WorkID       *uuid.UUID     `json:"workId,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for the CalendarEvent model
func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// CreateEventRequest is the payload for creating a calendar event.
type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	StartsAt    time.Time  `json:"startsAt" binding:"required"`
	EndsAt      *time.Time `json:"endsAt"`
	RemindAt    *time.Time `json:"remindAt"`
	ClientID    *uuid.UUID `json:"clientId"`
	WorkID      *uuid.UUID `json:"workId"`
}

// UpdateEventRequest is the payload for updating a calendar event.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	RemindAt    *time.Time `json:"remindAt"`
}

// EventListRequest carries list filters for calendar events.
type EventListRequest struct {
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	ClientID string     `form:"clientId"`
	Page     int        `form:"page"`
	Limit    int        `form:"limit"`
}
