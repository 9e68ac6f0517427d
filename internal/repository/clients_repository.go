package repository

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gestion-service/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// ClientsRepository persists clients.
type ClientsRepository struct {
	db *gorm.DB
}

func NewClientsRepository(db *gorm.DB) *ClientsRepository {
	return &ClientsRepository{db: db}
}

// foldName lowercases and strips diacritics so "Peñalver" and "penalver"
// compare equal in searches.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// CreateClient inserts a client, maintaining the folded search column.
func (r *ClientsRepository) CreateClient(ctx context.Context, client *models.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	client.SearchName = foldName(client.Name)
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(client).Error
}

// GetClientByID fetches one client.
func (r *ClientsRepository) GetClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// UpdateClient applies the non-nil fields of the request.
func (r *ClientsRepository) UpdateClient(ctx context.Context, id uuid.UUID, req *models.UpdateClientRequest) (*models.Client, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["search_name"] = foldName(*req.Name)
	}
	if req.TaxID != nil {
		updates["tax_id"] = *req.TaxID
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	result := r.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetClientByID(ctx, id)
}

// DeleteClient soft-deletes a client.
func (r *ClientsRepository) DeleteClient(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Client{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListClients returns a page of clients, optionally filtered by an
// accent-insensitive name search.
func (r *ClientsRepository) ListClients(ctx context.Context, req *models.ClientListRequest) ([]models.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{})
	if req.Search != "" {
		query = query.Where("search_name LIKE ?", "%"+foldName(req.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	clients := make([]models.Client, 0)
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name ASC").Offset(offset).Limit(req.Limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}
