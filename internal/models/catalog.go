package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogItem is the row shape shared by every product category table
// (accessories, ironworks, supplies). The tables are structurally
// identical; which table a repository call touches is decided by the
// pricing.Category configuration rather than by per-category types.
type CatalogItem struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code        string    `json:"code" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:numeric(12,2);not null;default:0"`
	Stock       int       `json:"stock" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateCatalogItemRequest is the payload for creating a catalog row.
type CreateCatalogItemRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

// UpdateCatalogItemRequest is the payload for updating a catalog row.
// Nil fields are left untouched.
type UpdateCatalogItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

// AdjustStockRequest applies a signed delta to a catalog row's stock.
type AdjustStockRequest struct {
	Delta  int     `json:"delta" binding:"required"`
	Reason *string `json:"reason"`
}

// CatalogListRequest carries list filters for a category table.
type CatalogListRequest struct {
	Code  string `form:"code"`
	Name  string `form:"name"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}
