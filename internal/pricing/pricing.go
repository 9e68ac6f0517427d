// Package pricing implements the price update batch importer: parsing
// tab-delimited price files, chunking entries into batches, dispatching
// batches to the update endpoint with bounded concurrency, and resolving
// batches against the category tables on the server side.
package pricing

const (
	// DefaultBatchSize is the protocol batch size agreed between the
	// dispatcher and the update endpoint.
	DefaultBatchSize = 500

	// MaxBatchSize is the largest batch the server accepts in one request.
	MaxBatchSize = 500

	// DefaultConcurrency is the number of in-flight batch requests per
	// dispatch group.
	DefaultConcurrency = 3
)

// Entry is a single code/price pair parsed from a price file. Identity is
// the trimmed code.
type Entry struct {
	Code  string  `json:"code"`
	Price float64 `json:"price"`
}

// Result accumulates the outcome of an import run. Updated counts the rows
// actually written across all batches and category tables; Errors collects
// every recoverable failure encountered along the way. Partial failures
// never discard previously accumulated counts.
type Result struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// Category describes one product category table. The resolver iterates a
// slice of these instead of branching per category, so adding a category is
// configuration rather than a new code path.
type Category struct {
	Name            string
	Table           string
	CodeColumn      string
	PriceColumn     string
	UpdatedAtColumn string
}

// DefaultCategories returns the category tables of the fittings catalog.
func DefaultCategories() []Category {
	return []Category{
		{Name: "accessories", Table: "accessories", CodeColumn: "code", PriceColumn: "price", UpdatedAtColumn: "updated_at"},
		{Name: "ironworks", Table: "ironworks", CodeColumn: "code", PriceColumn: "price", UpdatedAtColumn: "updated_at"},
		{Name: "supplies", Table: "supplies", CodeColumn: "code", PriceColumn: "price", UpdatedAtColumn: "updated_at"},
	}
}

// CategoryByName looks up a category by name in the given set.
func CategoryByName(categories []Category, name string) (Category, bool) {
	for _, cat := range categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}
