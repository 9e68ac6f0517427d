package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"gestion-service/internal/models"
	"gestion-service/internal/pricing"
)

// fakeCatalogStore serves catalog rows from memory, keyed by table name.
type fakeCatalogStore struct {
	items map[string][]models.CatalogItem
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{items: make(map[string][]models.CatalogItem)}
}

func (s *fakeCatalogStore) seed(table string, items ...models.CatalogItem) {
	s.items[table] = append(s.items[table], items...)
}

func (s *fakeCatalogStore) ListItems(_ context.Context, cat pricing.Category, _ *models.CatalogListRequest) ([]models.CatalogItem, int64, error) {
	rows := s.items[cat.Table]
	return rows, int64(len(rows)), nil
}

func (s *fakeCatalogStore) GetItemByID(_ context.Context, cat pricing.Category, id uuid.UUID) (*models.CatalogItem, error) {
	for _, item := range s.items[cat.Table] {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, assert.AnError
}

func (s *fakeCatalogStore) CreateItem(_ context.Context, cat pricing.Category, item *models.CatalogItem) error {
	s.items[cat.Table] = append(s.items[cat.Table], *item)
	return nil
}

func (s *fakeCatalogStore) UpdateItem(context.Context, pricing.Category, uuid.UUID, *models.UpdateCatalogItemRequest) error {
	return nil
}

func (s *fakeCatalogStore) DeleteItem(context.Context, pricing.Category, uuid.UUID) error {
	return nil
}

func (s *fakeCatalogStore) AdjustStock(context.Context, pricing.Category, uuid.UUID, int) (*models.CatalogItem, error) {
	return nil, assert.AnError
}

func (s *fakeCatalogStore) ListAllItems(_ context.Context, cat pricing.Category) ([]models.CatalogItem, error) {
	return s.items[cat.Table], nil
}

func newCatalogRouter(store CatalogStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewCatalogHandler(store, nil)
	router := gin.New()
	router.GET("/catalog/export", handler.ExportPriceList)
	router.GET("/catalog/:category", handler.ListItems)
	router.GET("/catalog/:category/:id", handler.GetItem)
	router.GET("/catalog-template", handler.DownloadImportTemplate)
	return router
}

func TestCatalog_UnknownCategory(t *testing.T) {
	router := newCatalogRouter(newFakeCatalogStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/hinges", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_CATEGORY")
}

func TestCatalog_InvalidItemID(t *testing.T) {
	router := newCatalogRouter(newFakeCatalogStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/accessories/nope", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ID")
}

func TestCatalog_ImportTemplateIsTabDelimited(t *testing.T) {
	router := newCatalogRouter(newFakeCatalogStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog-template", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\t")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "plantilla-precios")
}

func TestCatalog_ExportPriceListSheetPerCategory(t *testing.T) {
	store := newFakeCatalogStore()
	store.seed("accessories", models.CatalogItem{
		ID: uuid.New(), Code: "ACC-1", Name: "Manilla", Price: 12.5, Stock: 4, UpdatedAt: time.Now(),
	})
	store.seed("supplies", models.CatalogItem{
		ID: uuid.New(), Code: "SUP-1", Name: "Silicona", Price: 3.2, Stock: 40, UpdatedAt: time.Now(),
	})
	router := newCatalogRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/export", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tarifa-")

	workbook, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	assert.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, []string{"accessories", "ironworks", "supplies"}, workbook.GetSheetList())

	code, err := workbook.GetCellValue("accessories", "A2")
	assert.NoError(t, err)
	assert.Equal(t, "ACC-1", code)

	name, err := workbook.GetCellValue("supplies", "B2")
	assert.NoError(t, err)
	assert.Equal(t, "Silicona", name)

	// An empty category still gets its sheet, with only the header row.
	header, err := workbook.GetCellValue("ironworks", "A1")
	assert.NoError(t, err)
	assert.Equal(t, "Code", header)
}
