package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gestion-service/internal/models"
)

func TestIsValidBudgetTransition(t *testing.T) {
	cases := []struct {
		from    models.BudgetStatus
		to      models.BudgetStatus
		allowed bool
	}{
		{models.BudgetStatusDraft, models.BudgetStatusSent, true},
		{models.BudgetStatusSent, models.BudgetStatusApproved, true},
		{models.BudgetStatusSent, models.BudgetStatusRejected, true},
		{models.BudgetStatusRejected, models.BudgetStatusDraft, true},
		{models.BudgetStatusDraft, models.BudgetStatusApproved, false},
		{models.BudgetStatusApproved, models.BudgetStatusDraft, false},
		{models.BudgetStatusApproved, models.BudgetStatusRejected, false},
		{models.BudgetStatusRejected, models.BudgetStatusApproved, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, isValidBudgetTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestCreateBudget_RejectsEmptyItems(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBudgetsHandler(nil, nil)
	router := gin.New()
	router.POST("/budgets", handler.CreateBudget)

	body, _ := json.Marshal(gin.H{
		"clientId": "0d9bb3a5-5a3e-4f05-94b7-2f5f3f3a9f11",
		"items":    []models.BudgetItem{},
	})
	req := httptest.NewRequest(http.MethodPost, "/budgets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestUpdateBudgetStatus_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBudgetsHandler(nil, nil)
	router := gin.New()
	router.PUT("/budgets/:id/status", handler.UpdateBudgetStatus)

	body, _ := json.Marshal(models.UpdateBudgetStatusRequest{Status: models.BudgetStatusSent})
	req := httptest.NewRequest(http.MethodPut, "/budgets/not-a-uuid/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ID")
}
