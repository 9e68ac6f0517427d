package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gestion-service/internal/events"
	"gestion-service/internal/models"
	"gestion-service/internal/repository"
)

// ClientsHandler serves the client book.
type ClientsHandler struct {
	repo            *repository.ClientsRepository
	eventsPublisher *events.Publisher
}

func NewClientsHandler(repo *repository.ClientsRepository, eventsPublisher *events.Publisher) *ClientsHandler {
	return &ClientsHandler{repo: repo, eventsPublisher: eventsPublisher}
}

// CreateClient registers a new client.
func (h *ClientsHandler) CreateClient(c *gin.Context) {
	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	client := &models.Client{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	}
	if err := h.repo.CreateClient(c.Request.Context(), client); err != nil {
		respondInternalError(c, "Failed to create client")
		return
	}

	h.eventsPublisher.Publish(events.SubjectClientCreated, client)
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: client})
}

// GetClient returns one client by ID.
func (h *ClientsHandler) GetClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	client, err := h.repo.GetClientByID(c.Request.Context(), id)
	if err != nil {
		respondNotFound(c, "Client not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: client})
}

// UpdateClient applies a partial update to a client.
func (h *ClientsHandler) UpdateClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	var req models.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	client, err := h.repo.UpdateClient(c.Request.Context(), id, &req)
	if err != nil {
		respondNotFound(c, "Client not found")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: client})
}

// DeleteClient soft-deletes a client.
func (h *ClientsHandler) DeleteClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondInvalidID(c)
		return
	}

	if err := h.repo.DeleteClient(c.Request.Context(), id); err != nil {
		respondNotFound(c, "Client not found")
		return
	}

	h.eventsPublisher.Publish(events.SubjectClientDeleted, gin.H{"id": id})
	c.Status(http.StatusNoContent)
}

// ListClients returns a page of clients; the search filter is
// accent-insensitive.
func (h *ClientsHandler) ListClients(c *gin.Context) {
	var req models.ClientListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	normalizePage(&req.Page, &req.Limit)

	clients, total, err := h.repo.ListClients(c.Request.Context(), &req)
	if err != nil {
		respondInternalError(c, "Failed to list clients")
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success:    true,
		Data:       clients,
		Pagination: models.NewPagination(req.Page, req.Limit, total),
	})
}
