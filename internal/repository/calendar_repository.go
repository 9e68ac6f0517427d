package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gestion-service/internal/models"
	"gorm.io/gorm"
)

// CalendarRepository persists calendar events.
type CalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// CreateEvent inserts a calendar event.
func (r *CalendarRepository) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEventByID fetches one event.
func (r *CalendarRepository) GetEventByID(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent applies the non-nil fields of the request. Changing the
// reminder time re-arms a reminder that already fired.
func (r *CalendarRepository) UpdateEvent(ctx context.Context, id uuid.UUID, req *models.UpdateEventRequest) (*models.CalendarEvent, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartsAt != nil {
		updates["starts_at"] = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates["ends_at"] = *req.EndsAt
	}
	if req.RemindAt != nil {
		updates["remind_at"] = *req.RemindAt
		updates["reminder_sent"] = false
	}

	result := r.db.WithContext(ctx).Model(&models.CalendarEvent{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetEventByID(ctx, id)
}

// DeleteEvent soft-deletes an event.
func (r *CalendarRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CalendarEvent{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListEvents returns a filtered page of events ordered by start time.
func (r *CalendarRepository) ListEvents(ctx context.Context, req *models.EventListRequest) ([]models.CalendarEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CalendarEvent{})
	if req.From != nil {
		query = query.Where("starts_at >= ?", *req.From)
	}
	if req.To != nil {
		query = query.Where("starts_at < ?", *req.To)
	}
	if req.ClientID != "" {
		query = query.Where("client_id = ?", req.ClientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	events := make([]models.CalendarEvent, 0)
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("starts_at ASC").Offset(offset).Limit(req.Limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// DueReminders returns events whose reminder time has passed and has not
// been dispatched yet.
func (r *CalendarRepository) DueReminders(ctx context.Context, now time.Time, limit int) ([]models.CalendarEvent, error) {
	events := make([]models.CalendarEvent, 0)
	err := r.db.WithContext(ctx).
		Where("remind_at IS NOT NULL AND remind_at <= ? AND reminder_sent = ?", now, false).
		Order("remind_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// MarkReminderSent flags an event's reminder as dispatched.
func (r *CalendarRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.CalendarEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"reminder_sent": true, "updated_at": time.Now()}).Error
}
