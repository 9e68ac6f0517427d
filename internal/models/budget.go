package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BudgetStatus represents the lifecycle state of a budget.
type BudgetStatus string

const (
	BudgetStatusDraft    BudgetStatus = "DRAFT"
	BudgetStatusSent     BudgetStatus = "SENT"
	BudgetStatusApproved BudgetStatus = "APPROVED"
	BudgetStatusRejected BudgetStatus = "REJECTED"
)

// ValidBudgetTransitions maps each status to the states it may move to.
var ValidBudgetTransitions = map[BudgetStatus][]BudgetStatus{
	BudgetStatusDraft:    {BudgetStatusSent},
	BudgetStatusSent:     {BudgetStatusApproved, BudgetStatusRejected},
	BudgetStatusApproved: {},
	BudgetStatusRejected: {BudgetStatusDraft},
}

// Budget is a quotation prepared for a client. Items is a JSONB array of
// BudgetItem payloads.
type Budget struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID   uuid.UUID      `json:"clientId" gorm:"type:uuid;not null;index"`
	Number     string         `json:"number" gorm:"type:varchar(32);uniqueIndex;not null"`
	Status     BudgetStatus   `json:"status" gorm:"type:varchar(16);not null;default:'DRAFT'"`
	Items      datatypes.JSON `json:"items" gorm:"type:jsonb"`
	Total      float64        `json:"total" gorm:"type:numeric(12,2);not null;default:0"`
	ValidUntil *time.Time     `json:"validUntil,omitempty"`
	Notes      *string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for the Budget model
func (Budget) TableName() string {
	return "budgets"
}

// BudgetItem is one line of a budget, stored inside the Items JSONB array.
type BudgetItem struct {
	Category    string  `json:"category"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// CreateBudgetRequest is the payload for creating a budget.
type CreateBudgetRequest struct {
	ClientID   uuid.UUID    `json:"clientId" binding:"required"`
	Items      []BudgetItem `json:"items" binding:"required,dive"`
	ValidUntil *time.Time   `json:"validUntil"`
	Notes      *string      `json:"notes"`
}

// UpdateBudgetStatusRequest moves a budget through its lifecycle.
type UpdateBudgetStatusRequest struct {
	Status BudgetStatus `json:"status" binding:"required"`
}

// BudgetListRequest carries list filters for budgets.
type BudgetListRequest struct {
	ClientID string `form:"clientId"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}
