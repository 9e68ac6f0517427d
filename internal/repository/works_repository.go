package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gestion-service/internal/models"
	"gorm.io/gorm"
)

// WorksRepository persists works/installations.
type WorksRepository struct {
	db *gorm.DB
}

func NewWorksRepository(db *gorm.DB) *WorksRepository {
	return &WorksRepository{db: db}
}

// CreateWork inserts a work.
func (r *WorksRepository) CreateWork(ctx context.Context, work *models.Work) error {
	if work.ID == uuid.Nil {
		work.ID = uuid.New()
	}
	if work.Status == "" {
		work.Status = models.WorkStatusPending
	}
	work.CreatedAt = time.Now()
	work.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(work).Error
}

// GetWorkByID fetches one work.
func (r *WorksRepository) GetWorkByID(ctx context.Context, id uuid.UUID) (*models.Work, error) {
	var work models.Work
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&work).Error; err != nil {
		return nil, err
	}
	return &work, nil
}

// UpdateWork applies the non-nil fields of the request. Moving to DONE
// stamps the completion time.
func (r *WorksRepository) UpdateWork(ctx context.Context, id uuid.UUID, req *models.UpdateWorkRequest) (*models.Work, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ScheduledAt != nil {
		updates["scheduled_at"] = *req.ScheduledAt
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		if *req.Status == models.WorkStatusDone {
			updates["completed_at"] = time.Now()
		}
	}

	result := r.db.WithContext(ctx).Model(&models.Work{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetWorkByID(ctx, id)
}

// DeleteWork soft-deletes a work.
func (r *WorksRepository) DeleteWork(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Work{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListWorks returns a filtered page of works.
func (r *WorksRepository) ListWorks(ctx context.Context, req *models.WorkListRequest) ([]models.Work, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Work{})
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

	works := make([]models.Work, 0)
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&works).Error; err != nil {
		return nil, 0, err
	}
	return works, total, nil
}
