package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gestion-service/internal/models"
	"gestion-service/internal/repository"
)

// CalendarHandler serves appointments and their reminders.
type CalendarHandler struct {
	repo *repository.CalendarRepository
}

func NewCalendarHandler(repo *repository.CalendarRepository) *CalendarHandler {
	return &CalendarHandler{repo: repo}
}

// CreateEvent registers an appointment.
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "endsAt must not be before startsAt",
				Field:   "endsAt",
			},
		})
		return
	}

	event := &models.CalendarEvent{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		RemindAt:    req.RemindAt,
		ClientID:    req.ClientID,
		WorkID:      req.WorkID,
	}
	if err := h.repo.CreateEvent(c.Request.Context(), event); err != nil {
		respondInternalError(c, "Failed to create event")
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: event})
}

// GetEvent returns one event by ID.
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	event, err := h.repo.GetEventByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "Event not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: event})
}

// UpdateEvent applies a partial update; changing remindAt re-arms the
// reminder.
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	event, err := h.repo.UpdateEvent(c.Request.Context(), id, &req)
	if err != nil {
		respondNotFound(c, "Event not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: event})
}

// DeleteEvent soft-deletes an event.
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	if err := h.repo.DeleteEvent(c.Request.Context(), id); err != nil {
		respondNotFound(c, "Event not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListEvents returns a filtered page of events within an optional date
// window.
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	var req models.EventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	normalizePage(&req.Page, &req.Limit)

	events, total, err := h.repo.ListEvents(c.Request.Context(), &req)
	if err != nil {
		respondInternalError(c, "Failed to list events")
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success:    true,
		Data:       events,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	})
}
