package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gestion-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BudgetsRepository persists budgets.
type BudgetsRepository struct {
	db *gorm.DB
}

func NewBudgetsRepository(db *gorm.DB) *BudgetsRepository {
	return &BudgetsRepository{db: db}
}

// CreateBudget builds and inserts a budget from the request, computing the
// total from its items and assigning a human-readable number.
func (r *BudgetsRepository) CreateBudget(ctx context.Context, req *models.CreateBudgetRequest) (*models.Budget, error) {
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	total := 0.0
	for _, item := range req.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}

	id := uuid.New()
	budget := &models.Budget{
		ID:         id,
		ClientID:   req.ClientID,
		Number:     fmt.Sprintf("PRE-%s-%s", time.Now().Format("20060102"), id.String()[:8]),
		Status:     models.BudgetStatusDraft,
		Items:      datatypes.JSON(itemsJSON),
		Total:      total,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(budget).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

// GetBudgetByID fetches one budget.
func (r *BudgetsRepository) GetBudgetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error) {
	var budget models.Budget
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

// UpdateBudgetStatus moves a budget to a new lifecycle state.
func (r *BudgetsRepository) UpdateBudgetStatus(ctx context.Context, id uuid.UUID, status models.BudgetStatus) (*models.Budget, error) {
	result := r.db.WithContext(ctx).Model(&models.Budget{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetBudgetByID(ctx, id)
}

// DeleteBudget soft-deletes a budget.
func (r *BudgetsRepository) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Budget{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListBudgets returns a filtered page of budgets.
func (r *BudgetsRepository) ListBudgets(ctx context.Context, req *models.BudgetListRequest) ([]models.Budget, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Budget{})
	if req.ClientID != "" {
		query = query.Where("client_id = ?", req.ClientID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	budgets := make([]models.Budget, 0)
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&budgets).Error; err != nil {
		return nil, 0, err
	}
	return budgets, total, nil
}
