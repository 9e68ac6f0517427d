package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gestion-service/internal/models"
	"gestion-service/internal/pricing"
	"gestion-service/internal/repository"
)

// CatalogStore is the persistence surface the catalog handler needs,
// satisfied by repository.CatalogRepository.
type CatalogStore interface {
	ListItems(ctx context.Context, cat pricing.Category, req *models.CatalogListRequest) ([]models.CatalogItem, int64, error)
	GetItemByID(ctx context.Context, cat pricing.Category, id uuid.UUID) (*models.CatalogItem, error)
	CreateItem(ctx context.Context, cat pricing.Category, item *models.CatalogItem) error
	UpdateItem(ctx context.Context, cat pricing.Category, id uuid.UUID, req *models.UpdateCatalogItemRequest) error
	DeleteItem(ctx context.Context, cat pricing.Category, id uuid.UUID) error
	AdjustStock(ctx context.Context, cat pricing.Category, id uuid.UUID, delta int) (*models.CatalogItem, error)
	ListAllItems(ctx context.Context, cat pricing.Category) ([]models.CatalogItem, error)
}

// CatalogHandler serves the per-category product tables. The category path
// segment selects which table the request touches.
type CatalogHandler struct {
	repo       CatalogStore
	categories []pricing.Category
}

func NewCatalogHandler(repo CatalogStore, categories []pricing.Category) *CatalogHandler {
	if categories == nil {
		categories = pricing.DefaultCategories()
	}
	return &CatalogHandler{repo: repo, categories: categories}
}

// category resolves the :category path param or writes the 404 itself.
func (h *CatalogHandler) category(c *gin.Context) (pricing.Category, bool) {
	name := c.Param("category")
	cat, ok := pricing.CategoryByName(h.categories, name)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "UNKNOWN_CATEGORY",
				Message: fmt.Sprintf("Unknown category: %s", name),
			},
		})
		return pricing.Category{}, false
	}
	return cat, true
}

// ListItems returns a filtered page of one category table.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	cat, ok := h.category(c)
	if !ok {
		return
	}

	var req models.CatalogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	normalizePage(&req.Page, &req.Limit)

	items, total, err := h.repo.ListItems(c.Request.Context(), cat, &req)
	if err != nil {
		respondInternalError(c, "Failed to list items")
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success:    true,
		Data:       items,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	})
}

// GetItem returns one catalog row by ID.
func (h *CatalogHandler) GetItem(c *gin.Context) {
	cat, ok := h.category(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	item, err := h.repo.GetItemByID(c.Request.Context(), cat, id)
	if err != nil {
		respondNotFound(c, "Item not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: item})
}

// CreateItem inserts a new catalog row.
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	cat, ok := h.category(c)
	if !ok {
		return
	}

	var req models.CreateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	item := &models.CatalogItem{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := h.repo.CreateItem(c.Request.Context(), cat, item); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "DUPLICATE_CODE",
					Message: fmt.Sprintf("Code %s already exists in %s", req.Code, cat.Name),
					Field:   "code",
				},
			})
			return
		}
		respondInternalError(c, "Failed to create item")
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: item})
}

// UpdateItem applies a partial update to a catalog row.
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	cat, ok := h.category(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	var req models.UpdateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.repo.UpdateItem(c.Request.Context(), cat, id, &req); err != nil {
		respondNotFound(c, "Item not found")
		return
	}

	item, err := h.repo.GetItemByID(c.Request.Context(), cat, id)
	if err != nil {
		respondNotFound(c, "Item not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: item})
}

// DeleteItem removes a catalog row.
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	cat, ok := h.category(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	if err := h.repo.DeleteItem(c.Request.Context(), cat, id); err != nil {
		respondNotFound(c, "Item not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock applies a signed delta to a row's stock, refusing to go
// negative.
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	cat, ok := h.category(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	var req models.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	item, err := h.repo.AdjustStock(c.Request.Context(), cat, id, req.Delta)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INSUFFICIENT_STOCK",
					Message: "Stock cannot go negative",
					Field:   "delta",
				},
			})
			return
		}
		respondNotFound(c, "Item not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: item})
}

// ExportPriceList streams all category tables as an xlsx workbook, one
// sheet per category.
func (h *CatalogHandler) ExportPriceList(c *gin.Context) {
	file := excelize.NewFile()
	defer file.Close()

	for i, cat := range h.categories {
		items, err := h.repo.ListAllItems(c.Request.Context(), cat)
		if err != nil {
			respondInternalError(c, fmt.Sprintf("Failed to export %s", cat.Name))
			return
		}

		sheet := cat.Name
		if i == 0 {
			file.SetSheetName(file.GetSheetName(0), sheet)
		} else {
			if _, err := file.NewSheet(sheet); err != nil {
				respondInternalError(c, "Failed to build workbook")
				return
			}
		}

		_ = file.SetSheetRow(sheet, "A1", &[]interface{}{"Code", "Name", "Price", "Stock", "Updated"})
		for row, item := range items {
			cell := fmt.Sprintf("A%d", row+2)
			_ = file.SetSheetRow(sheet, cell, &[]interface{}{
				item.Code,
				item.Name,
				item.Price,
				item.Stock,
				item.UpdatedAt.Format("2006-01-02 15:04"),
			})
		}
	}

	filename := fmt.Sprintf("tarifa-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// DownloadImportTemplate serves a sample tab-delimited price file in the
// format the import parser accepts.
func (h *CatalogHandler) DownloadImportTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="plantilla-precios.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8",
		[]byte("COD-EJEMPLO-1\t12.50\nCOD-EJEMPLO-2\t1.234,56\n"))
}
