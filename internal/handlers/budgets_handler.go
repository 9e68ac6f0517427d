package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gestion-service/internal/events"
	"gestion-service/internal/models"
	"gestion-service/internal/repository"
)

// BudgetsHandler serves budget (quotation) lifecycle operations.
type BudgetsHandler struct {
	repo            *repository.BudgetsRepository
	eventsPublisher *events.Publisher
}

func NewBudgetsHandler(repo *repository.BudgetsRepository, eventsPublisher *events.Publisher) *BudgetsHandler {
	return &BudgetsHandler{repo: repo, eventsPublisher: eventsPublisher}
}

// CreateBudget creates a DRAFT budget with a generated number.
func (h *BudgetsHandler) CreateBudget(c *gin.Context) {
	var req models.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "A budget needs at least one item",
				Field:   "items",
			},
		})
		return
	}

	budget, err := h.repo.CreateBudget(c.Request.Context(), &req)
	if err != nil {
		respondInternalError(c, "Failed to create budget")
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: budget})
}

// GetBudget returns one budget by ID.
func (h *BudgetsHandler) GetBudget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	budget, err := h.repo.GetBudgetByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "Budget not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: budget})
}

// UpdateBudgetStatus moves a budget through its lifecycle, enforcing the
// allowed transitions.
func (h *BudgetsHandler) UpdateBudgetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	var req models.UpdateBudgetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	budget, err := h.repo.GetBudgetByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "Budget not found")
		return
	}

	if !isValidBudgetTransition(budget.Status, req.Status) {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_TRANSITION",
				Message: fmt.Sprintf("Cannot move budget from %s to %s", budget.Status, req.Status),
				Field:   "status",
			},
		})
		return
	}

	updated, err := h.repo.UpdateBudgetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondInternalError(c, "Failed to update budget status")
		return
	}

	h.eventsPublisher.Publish(events.SubjectBudgetStatusChanged, gin.H{
		"id":     updated.ID,
		"number": updated.Number,
		"from":   budget.Status,
		"to":     updated.Status,
	})
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: updated})
}

// DeleteBudget soft-deletes a budget.
func (h *BudgetsHandler) DeleteBudget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	if err := h.repo.DeleteBudget(c.Request.Context(), id); err != nil {
		respondNotFound(c, "Budget not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBudgets returns a filtered page of budgets.
func (h *BudgetsHandler) ListBudgets(c *gin.Context) {
	var req models.BudgetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	normalizePage(&req.Page, &req.Limit)

	budgets, total, err := h.repo.ListBudgets(c.Request.Context(), &req)
	if err != nil {
		respondInternalError(c, "Failed to list budgets")
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success:    true,
		Data:       budgets,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	})
}

func isValidBudgetTransition(from, to models.BudgetStatus) bool {
	for _, allowed := range models.ValidBudgetTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
