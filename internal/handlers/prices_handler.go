package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gestion-service/internal/events"
	"gestion-service/internal/pricing"
)

// PricesHandler serves the batch price update endpoint consumed by the
// import dispatcher. Unlike the /api/v1 resources this endpoint speaks the
// importer's wire shape on every status: { "updated": n, "errors": [...] }.
type PricesHandler struct {
	resolver        *pricing.Resolver
	eventsPublisher *events.Publisher
	logger          *logrus.Entry
}

func NewPricesHandler(resolver *pricing.Resolver, eventsPublisher *events.Publisher, logger *logrus.Entry) *PricesHandler {
	return &PricesHandler{
		resolver:        resolver,
		eventsPublisher: eventsPublisher,
		logger:          logger,
	}
}

// UpdatePricesRequest is the body of one batch submission.
type UpdatePricesRequest struct {
	Entries []pricing.Entry `json:"entries"`
}

// UpdatePrices applies one batch of code/price pairs across the category
// tables and reports the aggregated outcome.
func (h *PricesHandler) UpdatePrices(c *gin.Context) {
	if h.resolver == nil {
		c.JSON(http.StatusInternalServerError, pricing.UpdateResponse{
			Errors: []string{"price resolver is not available"},
		})
		return
	}

	var req UpdatePricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pricing.UpdateResponse{
			Errors: []string{fmt.Sprintf("invalid request body: %v", err)},
		})
		return
	}

	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, pricing.UpdateResponse{
			Errors: []string{"No hay entradas para procesar"},
		})
		return
	}

	if len(req.Entries) > pricing.MaxBatchSize {
		c.JSON(http.StatusBadRequest, pricing.UpdateResponse{
			Errors: []string{fmt.Sprintf("batch exceeds the maximum of %d entries", pricing.MaxBatchSize)},
		})
		return
	}

	result := h.resolver.ResolveBatch(c.Request.Context(), req.Entries)

	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{
			"entries": len(req.Entries),
			"updated": result.Updated,
			"errors":  len(result.Errors),
		}).Info("Price batch resolved")
	}
	h.eventsPublisher.PublishPriceImportCompleted(len(req.Entries), result.Updated, result.Errors)

	c.JSON(http.StatusOK, pricing.UpdateResponse{
		Updated: result.Updated,
		Errors:  result.Errors,
	})
}
