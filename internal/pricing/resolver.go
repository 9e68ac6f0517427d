package pricing

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store is the persistence surface the resolver needs from the catalog
// repository: set-membership lookups and batched price writes, scoped to
// one category table at a time.
type Store interface {
	// LookupExisting returns the subset of codes present in the category's
	// identity column.
	LookupExisting(ctx context.Context, cat Category, codes []string) ([]string, error)

	// BulkUpdatePrices writes the given prices to the rows matching each
	// entry's code in a single batched statement, refreshing the
	// category's last-modified column. It returns the number of rows
	// written. Codes with no matching row write nothing.
	BulkUpdatePrices(ctx context.Context, cat Category, entries []Entry) (int64, error)
}

// Resolver applies one batch of price entries across the configured
// category tables. A fault in one category's lookup or write never
// prevents the other categories from being attempted.
type Resolver struct {
	store      Store
	categories []Category
	logger     *logrus.Entry
}

// NewResolver builds a resolver over the given store and category set.
// Passing nil categories selects DefaultCategories.
func NewResolver(store Store, categories []Category, logger *logrus.Entry) *Resolver {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Resolver{store: store, categories: categories, logger: logger}
}

// Categories returns the resolver's category configuration.
func (r *Resolver) Categories() []Category {
	return r.categories
}

type tableOutcome struct {
	updated int64
	errs    []string
}

// ResolveBatch looks up which of the batch's codes exist in each category
// table, updates prices for the matching rows, and aggregates per-table
// outcomes. Lookups run in parallel, as do the writes; results are merged
// in category order so error output is deterministic. Codes present in no
// category table are silently skipped and produce neither an update nor an
// error.
func (r *Resolver) ResolveBatch(ctx context.Context, entries []Entry) Result {
	result := Result{Errors: []string{}}
	if len(entries) == 0 {
		return result
	}

	codes := make([]string, len(entries))
	for i, entry := range entries {
		codes[i] = entry.Code
	}

	outcomes := make([]tableOutcome, len(r.categories))
	var wg sync.WaitGroup
	for i, cat := range r.categories {
		wg.Add(1)
		go func(i int, cat Category) {
			defer wg.Done()
			outcomes[i] = r.resolveTable(ctx, cat, entries, codes)
		}(i, cat)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		result.Updated += int(outcome.updated)
		result.Errors = append(result.Errors, outcome.errs...)
	}
	return result
}

func (r *Resolver) resolveTable(ctx context.Context, cat Category, entries []Entry, codes []string) tableOutcome {
	var outcome tableOutcome

	found, err := r.store.LookupExisting(ctx, cat, codes)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).WithField("category", cat.Name).Warn("Code lookup failed")
		}
		outcome.errs = append(outcome.errs, fmt.Sprintf("%s: lookup failed: %v", cat.Name, err))
		return outcome
	}

	existing := make(map[string]bool, len(found))
	for _, code := range found {
		existing[code] = true
	}

	matched := make([]Entry, 0, len(found))
	for _, entry := range entries {
		if existing[entry.Code] {
			matched = append(matched, entry)
		}
	}
	if len(matched) == 0 {
		return outcome
	}

	written, err := r.store.BulkUpdatePrices(ctx, cat, matched)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).WithField("category", cat.Name).Warn("Price update failed")
		}
		outcome.errs = append(outcome.errs, fmt.Sprintf("%s: update failed: %v", cat.Name, err))
		return outcome
	}

	outcome.updated = written
	return outcome
}
