package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gestion-service/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps a page window to sane defaults.
func normalizePage(page, limit *int) {
	if *page <= 0 {
		*page = 1
	}
	if *limit <= 0 {
		*limit = defaultPageSize
	}
	if *limit > maxPageSize {
		*limit = maxPageSize
	}
}

func respondInvalidID(c *gin.Context) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INVALID_ID",
			Message: "Invalid ID format",
			Field:   "id",
		},
	})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "NOT_FOUND",
			Message: message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		},
	})
}

func respondInternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INTERNAL_ERROR",
			Message: message,
		},
	})
}
