package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkStatus represents the state of a work/installation job.
type WorkStatus string

const (
	WorkStatusPending    WorkStatus = "PENDING"
	WorkStatusInProgress WorkStatus = "IN_PROGRESS"
	WorkStatusDone       WorkStatus = "DONE"
	WorkStatusCancelled  WorkStatus = "CANCELLED"
)

// Work is an installation or repair job, optionally born from an approved
// budget.
type Work struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID    uuid.UUID      `json:"clientId" gorm:"type:uuid;not null;index"`
	BudgetID    *uuid.UUID     `json:"budgetId,omitempty" gorm:"type:uuid;index"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Description *string        `json:"description,omitempty" gorm:"type:text"`
	Status      WorkStatus     `json:"status" gorm:"type:varchar(16);not null;default:'PENDING'"`
	ScheduledAt *time.Time     `json:"scheduledAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for the Work model
func (Work) TableName() string {
	return "works"
}

// CreateWorkRequest is the payload for creating a work.
type CreateWorkRequest struct {
	ClientID    uuid.UUID  `json:"clientId" binding:"required"`
	BudgetID    *uuid.UUID `json:"budgetId"`
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// UpdateWorkRequest is the payload for updating a work. Nil fields are left
// untouched.
type UpdateWorkRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      *WorkStatus `json:"status"`
	ScheduledAt *time.Time  `json:"scheduledAt"`
}

// WorkListRequest carries list filters for works.
type WorkListRequest struct {
	ClientID string `form:"clientId"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}
