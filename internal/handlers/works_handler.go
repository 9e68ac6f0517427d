package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gestion-service/internal/events"
	"gestion-service/internal/models"
	"gestion-service/internal/repository"
)

// WorksHandler serves installation/repair jobs.
type WorksHandler struct {
	repo            *repository.WorksRepository
	eventsPublisher *events.Publisher
}

func NewWorksHandler(repo *repository.WorksRepository, eventsPublisher *events.Publisher) *WorksHandler {
	return &WorksHandler{repo: repo, eventsPublisher: eventsPublisher}
}

// CreateWork registers a new work, optionally linked to a budget.
func (h *WorksHandler) CreateWork(c *gin.Context) {
	var req models.CreateWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	work := &models.Work{
		ClientID:    req.ClientID,
		BudgetID:    req.BudgetID,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
	}
	if err := h.repo.CreateWork(c.Request.Context(), work); err != nil {
		respondInternalError(c, "Failed to create work")
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: work})
}

// GetWork returns one work by ID.
func (h *WorksHandler) GetWork(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	work, err := h.repo.GetWorkByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "Work not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: work})
}

// UpdateWork applies a partial update; moving to DONE stamps completed_at.
func (h *WorksHandler) UpdateWork(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	var req models.UpdateWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	previous, err := h.repo.GetWorkByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "Work not found")
		return
	}

	work, err := h.repo.UpdateWork(c.Request.Context(), id, &req)
	if err != nil {
		respondNotFound(c, "Work not found")
		return
	}

	if req.Status != nil && *req.Status != previous.Status {
		h.eventsPublisher.Publish(events.SubjectWorkStatusChanged, gin.H{
			"id":   work.ID,
			"from": previous.Status,
			"to":   work.Status,
		})
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: work})
}

// DeleteWork soft-deletes a work.
func (h *WorksHandler) DeleteWork(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	if err := h.repo.DeleteWork(c.Request.Context(), id); err != nil {
		respondNotFound(c, "Work not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWorks returns a filtered page of works.
func (h *WorksHandler) ListWorks(c *gin.Context) {
	var req models.WorkListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	normalizePage(&req.Page, &req.Limit)

	works, total, err := h.repo.ListWorks(c.Request.Context(), &req)
	if err != nil {
		respondInternalError(c, "Failed to list works")
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success:    true,
		Data:       works,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	})
}
