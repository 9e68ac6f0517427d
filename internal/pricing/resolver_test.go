package pricing

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeStore keeps an in-memory code->price map per category table and can
// be told to fail lookups or writes for specific categories.
type fakeStore struct {
	mu          sync.Mutex
	rows        map[string]map[string]float64
	failLookup  map[string]bool
	failUpdate  map[string]bool
	lookupCalls map[string]int
	updateCalls map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:        make(map[string]map[string]float64),
		failLookup:  make(map[string]bool),
		failUpdate:  make(map[string]bool),
		lookupCalls: make(map[string]int),
		updateCalls: make(map[string]int),
	}
}

func (s *fakeStore) seed(table string, codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[table] == nil {
		s.rows[table] = make(map[string]float64)
	}
	for _, code := range codes {
		s.rows[table][code] = 0
	}
}

func (s *fakeStore) LookupExisting(_ context.Context, cat Category, codes []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupCalls[cat.Name]++
	if s.failLookup[cat.Name] {
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

func (s *fakeStore) BulkUpdatePrices(_ context.Context, cat Category, entries []Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls[cat.Name]++
	if s.failUpdate[cat.Name] {
		return 0, fmt.Errorf("deadlock detected")
	}
	var written int64
	for _, entry := range entries {
		if _, ok := s.rows[cat.Table][entry.Code]; ok {
			s.rows[cat.Table][entry.Code] = entry.Price
			written++
		}
	}
	return written, nil
}

func TestResolveBatch_UpdatesAcrossCategories(t *testing.T) {
	store := newFakeStore()
	store.seed("accessories", "ACC-1")
	store.seed("ironworks", "IRO-1")
	r := NewResolver(store, nil, nil)

	result := r.ResolveBatch(context.Background(), []Entry{
		{Code: "ACC-1", Price: 10},
		{Code: "IRO-1", Price: 20},
		{Code: "MISSING", Price: 30},
	})

	assert.Equal(t, 2, result.Updated)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 10.0, store.rows["accessories"]["ACC-1"])
	assert.Equal(t, 20.0, store.rows["ironworks"]["IRO-1"])
}

func TestResolveBatch_AbsentCodesAreSilentlySkipped(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, nil, nil)

	result := r.ResolveBatch(context.Background(), []Entry{
		{Code: "X", Price: 1},
		{Code: "Y", Price: 2},
	})

	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Errors)
	// No matches means no write round trip at all.
	assert.Zero(t, store.updateCalls["accessories"])
	assert.Zero(t, store.updateCalls["ironworks"])
	assert.Zero(t, store.updateCalls["supplies"])
}

func TestResolveBatch_LookupFailureIsolatedPerTable(t *testing.T) {
	store := newFakeStore()
	store.seed("ironworks", "IRO-1")
	store.seed("supplies", "SUP-1")
	store.failLookup["accessories"] = true
	r := NewResolver(store, nil, nil)

	result := r.ResolveBatch(context.Background(), []Entry{
		{Code: "IRO-1", Price: 5},
		{Code: "SUP-1", Price: 6},
	})

	assert.Equal(t, 2, result.Updated)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "accessories")
	assert.Contains(t, result.Errors[0], "lookup failed")
}

func TestResolveBatch_WriteFailureIsolatedPerTable(t *testing.T) {
	store := newFakeStore()
	store.seed("accessories", "ACC-1")
	store.seed("ironworks", "IRO-1")
	store.failUpdate["ironworks"] = true
	r := NewResolver(store, nil, nil)

	result := r.ResolveBatch(context.Background(), []Entry{
		{Code: "ACC-1", Price: 5},
		{Code: "IRO-1", Price: 6},
	})

	assert.Equal(t, 1, result.Updated)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ironworks")
	assert.Contains(t, result.Errors[0], "update failed")
}

func TestResolveBatch_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.seed("supplies", "SUP-1", "SUP-2")
	r := NewResolver(store, nil, nil)
	batch := []Entry{{Code: "SUP-1", Price: 9.5}, {Code: "SUP-2", Price: 3}}

	first := r.ResolveBatch(context.Background(), batch)
	second := r.ResolveBatch(context.Background(), batch)

	assert.Equal(t, first.Updated, second.Updated)
	assert.Equal(t, 2, second.Updated)
	// Update-not-insert: the table still holds exactly two rows.
	assert.Len(t, store.rows["supplies"], 2)
}

func TestResolveBatch_DuplicateMatchesAcrossTablesBothUpdate(t *testing.T) {
	store := newFakeStore()
	store.seed("accessories", "SHARED")
	store.seed("supplies", "SHARED")
	r := NewResolver(store, nil, nil)

	result := r.ResolveBatch(context.Background(), []Entry{{Code: "SHARED", Price: 7}})

	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 7.0, store.rows["accessories"]["SHARED"])
	assert.Equal(t, 7.0, store.rows["supplies"]["SHARED"])
}

func TestResolveBatch_EmptyBatch(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, nil, nil)

	result := r.ResolveBatch(context.Background(), nil)

	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Errors)
	assert.Zero(t, store.lookupCalls["accessories"])
}

func TestResolveBatch_CustomCategorySet(t *testing.T) {
	store := newFakeStore()
	store.seed("profiles", "PRO-1")
	categories := append(DefaultCategories(), Category{
		Name: "profiles", Table: "profiles",
		CodeColumn: "code", PriceColumn: "price", UpdatedAtColumn: "updated_at",
	})
	r := NewResolver(store, categories, nil)

	result := r.ResolveBatch(context.Background(), []Entry{{Code: "PRO-1", Price: 1}})

	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)
}
