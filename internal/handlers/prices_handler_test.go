package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gestion-service/internal/pricing"
)

// memoryStore is an in-memory pricing.Store keyed by category table.
type memoryStore struct {
	mu   sync.Mutex
	rows map[string]map[string]float64
	fail map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rows: make(map[string]map[string]float64),
		fail: make(map[string]bool),
	}
}

func (s *memoryStore) seed(table string, codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[table] == nil {
		s.rows[table] = make(map[string]float64)
	}
	for _, code := range codes {
		s.rows[table][code] = 0
	}
}

func (s *memoryStore) LookupExisting(_ context.Context, cat pricing.Category, codes []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[cat.Name] {
		return nil, fmt.Errorf("connection refused")
	}
	var found []string
	for _, code := range codes {
		if _, ok := s.rows[cat.Table][code]; ok {
			found = append(found, code)
		}
	}
	return found, nil
}

func (s *memoryStore) BulkUpdatePrices(_ context.Context, cat pricing.Category, entries []pricing.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var written int64
	for _, entry := range entries {
		if _, ok := s.rows[cat.Table][entry.Code]; ok {
			s.rows[cat.Table][entry.Code] = entry.Price
			written++
		}
	}
	return written, nil
}

func newPricesRouter(store pricing.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := pricing.NewResolver(store, nil, nil)
	handler := NewPricesHandler(resolver, nil, nil)

	router := gin.New()
	router.POST("/api/update-prices", handler.UpdatePrices)
	return router
}

func postUpdatePrices(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/update-prices", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpdatePrices_UpdatesMatchingRows(t *testing.T) {
	store := newMemoryStore()
	store.seed("accessories", "ACC-1")
	store.seed("supplies", "SUP-1")
	router := newPricesRouter(store)

	rec := postUpdatePrices(t, router, UpdatePricesRequest{Entries: []pricing.Entry{
		{Code: "ACC-1", Price: 10.5},
		{Code: "SUP-1", Price: 3.2},
		{Code: "UNKNOWN", Price: 99},
	}})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp pricing.UpdateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Updated)
	assert.Empty(t, resp.Errors)

	assert.Equal(t, 10.5, store.rows["accessories"]["ACC-1"])
	assert.Equal(t, 3.2, store.rows["supplies"]["SUP-1"])
}

func TestUpdatePrices_EmptyEntriesRejected(t *testing.T) {
	router := newPricesRouter(newMemoryStore())

	rec := postUpdatePrices(t, router, UpdatePricesRequest{Entries: []pricing.Entry{}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No hay entradas para procesar")
}

func TestUpdatePrices_MissingEntriesFieldRejected(t *testing.T) {
	router := newPricesRouter(newMemoryStore())

	rec := postUpdatePrices(t, router, gin.H{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No hay entradas para procesar")
}

func TestUpdatePrices_OversizedBatchRejected(t *testing.T) {
	router := newPricesRouter(newMemoryStore())

	entries := make([]pricing.Entry, pricing.MaxBatchSize+1)
	for i := range entries {
		entries[i] = pricing.Entry{Code: fmt.Sprintf("C-%d", i), Price: 1}
	}
	rec := postUpdatePrices(t, router, UpdatePricesRequest{Entries: entries})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds the maximum")
}

func TestUpdatePrices_MalformedBodyRejected(t *testing.T) {
	router := newPricesRouter(newMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/api/update-prices", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestUpdatePrices_TableFailureReportedInErrors(t *testing.T) {
	store := newMemoryStore()
	store.seed("accessories", "ACC-1")
	store.fail["ironworks"] = true
	router := newPricesRouter(store)

	rec := postUpdatePrices(t, router, UpdatePricesRequest{Entries: []pricing.Entry{
		{Code: "ACC-1", Price: 7},
	}})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp pricing.UpdateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Updated)
	assert.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "ironworks")
}

func TestUpdatePrices_NilResolver(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPricesHandler(nil, nil, nil)
	router := gin.New()
	router.POST("/api/update-prices", handler.UpdatePrices)

	rec := postUpdatePrices(t, router, UpdatePricesRequest{Entries: []pricing.Entry{{Code: "X", Price: 1}}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
