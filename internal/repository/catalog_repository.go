package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gestion-service/internal/models"
	"gestion-service/internal/pricing"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateCode is returned when an insert would reuse a business code.
	ErrDuplicateCode = errors.New("duplicate code")
	// ErrInsufficientStock is returned when a stock delta would go negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Cache TTL constants
const (
	catalogItemCacheTTL = 5 * time.Minute
	catalogListCacheTTL = 2 * time.Minute // lists change often with imports running
)

// CatalogRepository persists the category tables. Every method takes the
// pricing.Category describing which table to touch, so the three (or more)
// categories share one code path.
type CatalogRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogRepository(db *gorm.DB, redisClient *redis.Client) *CatalogRepository {
	return &CatalogRepository{db: db, redis: redisClient}
}

// Ensure the repository satisfies the resolver's store contract.
var _ pricing.Store = (*CatalogRepository)(nil)

func catalogListKey(cat pricing.Category, req *models.CatalogListRequest) string {
	return fmt.Sprintf("gestion:catalog:list:%s:%s:%s:%d:%d", cat.Table, req.Code, req.Name, req.Page, req.Limit)
}

func (r *CatalogRepository) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if r.redis == nil {
		return false
	}
	raw, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (r *CatalogRepository) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r.redis == nil {
		return
	}
	if raw, err := json.Marshal(value); err == nil {
		_ = r.redis.Set(ctx, key, raw, ttl).Err()
	}
}

// invalidateCategoryCaches drops every cached list/item for one category
// table. Uses SCAN so a large keyspace does not block Redis.
func (r *CatalogRepository) invalidateCategoryCaches(ctx context.Context, cat pricing.Category) {
	if r.redis == nil {
		return
	}
	for _, pattern := range []string{
		fmt.Sprintf("gestion:catalog:list:%s:*", cat.Table),
		fmt.Sprintf("gestion:catalog:item:%s:*", cat.Table),
	} {
		iter := r.redis.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			_ = r.redis.Del(ctx, iter.Val()).Err()
		}
	}
}

type cachedList struct {
	Items []models.CatalogItem `json:"items"`
	Total int64                `json:"total"`
}

// ListItems returns a filtered page of a category table.
func (r *CatalogRepository) ListItems(ctx context.Context, cat pricing.Category, req *models.CatalogListRequest) ([]models.CatalogItem, int64, error) {
	key := catalogListKey(cat, req)
	var cached cachedList
	if r.cacheGet(ctx, key, &cached) {
		return cached.Items, cached.Total, nil
	}

	query := r.db.WithContext(ctx).Table(cat.Table)
	if req.Code != "" {
		query = query.Where(cat.CodeColumn+" ILIKE ?", req.Code+"%")
	}
	if req.Name != "" {
		query = query.Where("name ILIKE ?", "%"+req.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.CatalogItem, 0)
	offset := (req.Page - 1) * req.Limit
	if err := query.Order(cat.CodeColumn + " ASC").Offset(offset).Limit(req.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	r.cacheSet(ctx, key, cachedList{Items: items, Total: total}, catalogListCacheTTL)
	return items, total, nil
}

// GetItemByID fetches one row of a category table.
func (r *CatalogRepository) GetItemByID(ctx context.Context, cat pricing.Category, id uuid.UUID) (*models.CatalogItem, error) {
	key := fmt.Sprintf("gestion:catalog:item:%s:%s", cat.Table, id)
	var cached models.CatalogItem
	if r.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	var item models.CatalogItem
	if err := r.db.WithContext(ctx).Table(cat.Table).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	r.cacheSet(ctx, key, item, catalogItemCacheTTL)
	return &item, nil
}

// GetItemByCode fetches one row of a category table by business code.
func (r *CatalogRepository) GetItemByCode(ctx context.Context, cat pricing.Category, code string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).Table(cat.Table).Where(cat.CodeColumn+" = ?", code).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a catalog row, rejecting duplicate codes.
func (r *CatalogRepository) CreateItem(ctx context.Context, cat pricing.Category, item *models.CatalogItem) error {
	var existing int64
	if err := r.db.WithContext(ctx).Table(cat.Table).
		Where(cat.CodeColumn+" = ?", item.Code).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("code %q already exists in %s: %w", item.Code, cat.Name, ErrDuplicateCode)
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Table(cat.Table).Create(item).Error; err != nil {
		return err
	}
	r.invalidateCategoryCaches(ctx, cat)
	return nil
}

// UpdateItem applies the non-nil fields of the request to a catalog row.
func (r *CatalogRepository) UpdateItem(ctx context.Context, cat pricing.Category, id uuid.UUID, req *models.UpdateCatalogItemRequest) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates[cat.PriceColumn] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}

	result := r.db.WithContext(ctx).Table(cat.Table).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateCategoryCaches(ctx, cat)
	return nil
}

// DeleteItem removes a catalog row.
func (r *CatalogRepository) DeleteItem(ctx context.Context, cat pricing.Category, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Table(cat.Table).Where("id = ?", id).Delete(&models.CatalogItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateCategoryCaches(ctx, cat)
	return nil
}

// AdjustStock applies a signed delta to a row's stock level.
func (r *CatalogRepository) AdjustStock(ctx context.Context, cat pricing.Category, id uuid.UUID, delta int) (*models.CatalogItem, error) {
	result := r.db.WithContext(ctx).Table(cat.Table).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Table(cat.Table).Where("id = ?", id).Count(&count).Error; err == nil && count > 0 {
			return nil, ErrInsufficientStock
		}
		return nil, gorm.ErrRecordNotFound
	}
	r.invalidateCategoryCaches(ctx, cat)
	return r.GetItemByID(ctx, cat, id)
}

// ListAllItems streams every row of a category table ordered by code,
// used by the price-list export.
func (r *CatalogRepository) ListAllItems(ctx context.Context, cat pricing.Category) ([]models.CatalogItem, error) {
	items := make([]models.CatalogItem, 0)
	err := r.db.WithContext(ctx).Table(cat.Table).Order(cat.CodeColumn + " ASC").Find(&items).Error
	return items, err
}

// LookupExisting returns which of the given codes exist in the category's
// identity column. Part of the pricing.Store contract.
func (r *CatalogRepository) LookupExisting(ctx context.Context, cat pricing.Category, codes []string) ([]string, error) {
	found := make([]string, 0, len(codes))
	err := r.db.WithContext(ctx).Table(cat.Table).
		Where(cat.CodeColumn+" IN ?", codes).
		Pluck(cat.CodeColumn, &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// BulkUpdatePrices writes a whole batch of prices in one statement by
// joining the table against unnested arrays, refreshing the last-modified
// column. Rows whose code is not present are untouched. Part of the
// pricing.Store contract.
//
// Column and table names come from the static category configuration, not
// from request data.
func (r *CatalogRepository) BulkUpdatePrices(ctx context.Context, cat pricing.Category, entries []pricing.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	codes := make([]string, len(entries))
	prices := make([]float64, len(entries))
	for i, entry := range entries {
		codes[i] = entry.Code
		prices[i] = entry.Price
	}

	query := fmt.Sprintf(
		"UPDATE %s AS t SET %s = u.price, %s = NOW() FROM (SELECT unnest(?::text[]) AS code, unnest(?::float8[]) AS price) AS u WHERE t.%s = u.code",
		cat.Table, cat.PriceColumn, cat.UpdatedAtColumn, cat.CodeColumn,
	)

	result := r.db.WithContext(ctx).Exec(query, pq.Array(codes), pq.Array(prices))
	if result.Error != nil {
		return 0, result.Error
	}
	r.invalidateCategoryCaches(ctx, cat)
	return result.RowsAffected, nil
}
