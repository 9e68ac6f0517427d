package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gestion-service/internal/models"
	"gestion-service/internal/notifications"
	"gestion-service/internal/repository"
)

// NotificationsHandler serves ad-hoc sends and the delivery log.
type NotificationsHandler struct {
	service *notifications.Service
	repo    *repository.NotificationsRepository
}

func NewNotificationsHandler(service *notifications.Service, repo *repository.NotificationsRepository) *NotificationsHandler {
	return &NotificationsHandler{service: service, repo: repo}
}

// SendNotification delivers one message through the requested channel. The
// attempt is logged whether or not delivery succeeds.
func (h *NotificationsHandler) SendNotification(c *gin.Context) {
	var req models.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Channel != models.NotificationChannelEmail && req.Channel != models.NotificationChannelWhatsApp {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Unknown channel",
				Field:   "channel",
			},
		})
		return
	}

	notification, err := h.service.Notify(c.Request.Context(), req.Channel, req.Recipient, req.Subject, req.Body)
	if err != nil {
		if notification == nil {
			respondInternalError(c, "Failed to record notification")
			return
		}
		// Delivery failed but the attempt is logged; surface both.
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DELIVERY_FAILED",
				Message: err.Error(),
			},
		})
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: notification})
}

// ListNotifications returns a filtered page of the delivery log.
func (h *NotificationsHandler) ListNotifications(c *gin.Context) {
	var req models.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	normalizePage(&req.Page, &req.Limit)

	log, total, err := h.repo.ListNotifications(c.Request.Context(), &req)
	if err != nil {
		respondInternalError(c, "Failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success:    true,
		Data:       log,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	})
}
