package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultRequestTimeout bounds a single batch request. Network calls can
// hang indefinitely otherwise; a timeout surfaces as a batch-level
// transport error under the dispatcher's failure policy.
const DefaultRequestTimeout = 30 * time.Second

// ProgressFunc receives cumulative progress after each dispatch group
// settles: processed is the sum of updated rows across completed batches,
// total is the number of entries in the run.
type ProgressFunc func(processed, total int)

// Dispatcher drives batch submission against the price update endpoint.
// Batches are processed in fixed-size groups of at most Concurrency
// concurrent requests; a group must fully settle before the next one
// starts. Every entry is dispatched exactly once.
type Dispatcher struct {
	Endpoint       string
	BatchSize      int
	Concurrency    int
	RequestTimeout time.Duration

	// ContinueOnError switches the failure policy. When false (default),
	// a single batch transport failure aborts the remaining groups; when
	// true the failure is accumulated as an error string and the run
	// continues through all batches.
	ContinueOnError bool

	OnProgress ProgressFunc
	HTTPClient *http.Client
	Logger     *logrus.Entry
}

// NewDispatcher returns a dispatcher with protocol defaults.
func NewDispatcher(endpoint string, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		Endpoint:       endpoint,
		BatchSize:      DefaultBatchSize,
		Concurrency:    DefaultConcurrency,
		RequestTimeout: DefaultRequestTimeout,
		HTTPClient:     &http.Client{},
		Logger:         logger,
	}
}

type updateRequest struct {
	Entries []Entry `json:"entries"`
}

// UpdateResponse is the wire shape returned by the update endpoint.
type UpdateResponse struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

type batchOutcome struct {
	response UpdateResponse
	err      error
}

// Dispatch parses nothing and persists nothing: it takes an already
// deduplicated entry list, chunks it, and drives the endpoint. With zero
// entries it short-circuits without issuing any requests.
func (d *Dispatcher) Dispatch(ctx context.Context, entries []Entry) (*Result, error) {
	result := &Result{Errors: []string{}}
	if len(entries) == 0 {
		return result, nil
	}

	batchSize := d.BatchSize
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = DefaultBatchSize
	}
	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	batches := Chunk(entries, batchSize)
	total := len(entries)
	processed := 0

	for start := 0; start < len(batches); start += concurrency {
		end := start + concurrency
		if end > len(batches) {
			end = len(batches)
		}
		group := batches[start:end]
		outcomes := make([]batchOutcome, len(group))

		var wg sync.WaitGroup
		for i, batch := range group {
			wg.Add(1)
			go func(i int, batch []Entry) {
				defer wg.Done()
				resp, err := d.sendBatch(ctx, batch)
				outcomes[i] = batchOutcome{response: resp, err: err}
			}(i, batch)
		}
		wg.Wait()

		for i, outcome := range outcomes {
			if outcome.err != nil {
				if !d.ContinueOnError {
					return result, fmt.Errorf("batch %d failed: %w", start+i+1, outcome.err)
				}
				result.Errors = append(result.Errors, fmt.Sprintf("batch %d: %v", start+i+1, outcome.err))
				continue
			}
			result.Updated += outcome.response.Updated
			result.Errors = append(result.Errors, outcome.response.Errors...)
		}

		processed = result.Updated
		if d.OnProgress != nil {
			d.OnProgress(processed, total)
		}
		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"batches_done": end,
				"batches":      len(batches),
				"updated":      result.Updated,
			}).Debug("Dispatch group settled")
		}
	}

	return result, nil
}

// sendBatch issues one POST for a batch and decodes the structured
// response. Non-2xx statuses and transport faults are batch-level errors.
func (d *Dispatcher) sendBatch(ctx context.Context, batch []Entry) (UpdateResponse, error) {
	var decoded UpdateResponse

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(updateRequest{Entries: batch})
	if err != nil {
		return decoded, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, d.Endpoint, bytes.NewReader(body))
	if err != nil {
		return decoded, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return decoded, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return decoded, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies share the response shape; surface their messages
		// when present.
		if json.Unmarshal(raw, &decoded) == nil && len(decoded.Errors) > 0 {
			return UpdateResponse{}, fmt.Errorf("status %d: %s", resp.StatusCode, decoded.Errors[0])
		}
		return UpdateResponse{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, &decoded); err != nil {
		return UpdateResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return decoded, nil
}
