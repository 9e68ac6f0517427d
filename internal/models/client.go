package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a customer of the distributor.
type Client struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name    string    `json:"name" gorm:"type:varchar(255);not null"`
	TaxID   *string   `json:"taxId,omitempty" gorm:"column:tax_id;type:varchar(32)"`
	Email   *string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	Phone   *string   `json:"phone,omitempty" gorm:"type:varchar(64)"`
	Address *string   `json:"address,omitempty" gorm:"type:text"`
	Notes   *string   `json:"notes,omitempty" gorm:"type:text"`

	// SearchName holds the accent-folded lowercase name, maintained by the
	// repository so lookups stay accent-insensitive without a database
	// extension.
	SearchName string `json:"-" gorm:"type:varchar(255);index"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// CreateClientRequest is the payload for creating a client.
type CreateClientRequest struct {
	Name    string  `json:"name" binding:"required"`
	TaxID   *string `json:"taxId"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// UpdateClientRequest is the payload for updating a client. Nil fields are
// left untouched.
type UpdateClientRequest struct {
	Name    *string `json:"name"`
	TaxID   *string `json:"taxId"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// ClientListRequest carries list filters for clients.
type ClientListRequest struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
