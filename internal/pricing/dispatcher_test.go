package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newUpdateServer returns a test server that reports every entry in a
// request as updated, plus the number of requests it received.
func newUpdateServer(t *testing.T) (*httptest.Server, *int64) {
	t.Helper()
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)

		var req struct {
			Entries []Entry `json:"entries"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(UpdateResponse{Updated: len(req.Entries)})
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestDispatch_EmptyEntriesShortCircuits(t *testing.T) {
	server, requests := newUpdateServer(t)
	d := NewDispatcher(server.URL, nil)

	result, err := d.Dispatch(context.Background(), nil)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Errors)
	assert.EqualValues(t, 0, atomic.LoadInt64(requests))
}

func TestDispatch_SingleGroupAggregates(t *testing.T) {
	server, requests := newUpdateServer(t)
	d := NewDispatcher(server.URL, nil)
	d.BatchSize = 500
	d.Concurrency = 3

	var progress [][2]int
	d.OnProgress = func(processed, total int) {
		progress = append(progress, [2]int{processed, total})
	}

	result, err := d.Dispatch(context.Background(), makeEntries(1200))

	assert.NoError(t, err)
	assert.Equal(t, 1200, result.Updated)
	assert.Empty(t, result.Errors)
	// 3 batches, concurrency 3: one group, one progress report.
	assert.EqualValues(t, 3, atomic.LoadInt64(requests))
	assert.Equal(t, [][2]int{{1200, 1200}}, progress)
}

func TestDispatch_GroupsProcessedSequentially(t *testing.T) {
	server, requests := newUpdateServer(t)
	d := NewDispatcher(server.URL, nil)
	d.BatchSize = 100
	d.Concurrency = 2

	var progress [][2]int
	d.OnProgress = func(processed, total int) {
		progress = append(progress, [2]int{processed, total})
	}

	result, err := d.Dispatch(context.Background(), makeEntries(500))

	assert.NoError(t, err)
	assert.Equal(t, 500, result.Updated)
	assert.EqualValues(t, 5, atomic.LoadInt64(requests))
	// 5 batches in groups of 2 -> 3 groups, cumulative progress.
	assert.Equal(t, [][2]int{{200, 500}, {400, 500}, {500, 500}}, progress)
}

func TestDispatch_AbortsOnBatchFailureByDefault(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(UpdateResponse{Errors: []string{"database unavailable"}})
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, nil)
	d.BatchSize = 10
	d.Concurrency = 1

	_, err := d.Dispatch(context.Background(), makeEntries(30))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database unavailable")
	// First group fails, remaining groups never submitted.
	assert.EqualValues(t, 1, atomic.LoadInt64(&requests))
}

func TestDispatch_ContinueOnErrorRunsAllBatches(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&requests, 1)
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var req struct {
			Entries []Entry `json:"entries"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(UpdateResponse{Updated: len(req.Entries)})
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, nil)
	d.BatchSize = 10
	d.Concurrency = 1
	d.ContinueOnError = true

	result, err := d.Dispatch(context.Background(), makeEntries(30))

	assert.NoError(t, err)
	assert.Equal(t, 20, result.Updated)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "batch 1")
	assert.EqualValues(t, 3, atomic.LoadInt64(&requests))
}

func TestDispatch_CollectsServerReportedErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(UpdateResponse{
			Updated: 2,
			Errors:  []string{"supplies: update failed: timeout"},
		})
	}))
	defer server.Close()

	d := NewDispatcher(server.URL, nil)
	result, err := d.Dispatch(context.Background(), makeEntries(3))

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, []string{"supplies: update failed: timeout"}, result.Errors)
}

func TestDispatch_UnreachableEndpoint(t *testing.T) {
	d := NewDispatcher("http://127.0.0.1:1/api/update-prices", nil)
	d.BatchSize = 10

	_, err := d.Dispatch(context.Background(), makeEntries(5))

	assert.Error(t, err)
}
