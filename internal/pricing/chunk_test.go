package pricing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Code: fmt.Sprintf("C%04d", i), Price: float64(i)}
	}
	return entries
}

func TestChunk_Completeness(t *testing.T) {
	for _, n := range []int{0, 1, 3, 499, 500, 501, 1200} {
		for _, size := range []int{1, 2, 100, 500} {
			batches := Chunk(makeEntries(n), size)

			var flattened []Entry
			for _, batch := range batches {
				assert.LessOrEqual(t, len(batch), size)
				flattened = append(flattened, batch...)
			}
			assert.Equal(t, makeEntries(n), append([]Entry{}, flattened...),
				"n=%d size=%d", n, size)
		}
	}
}

func TestChunk_BatchCount(t *testing.T) {
	batches := Chunk(makeEntries(1200), 500)

	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 500)
	assert.Len(t, batches[1], 500)
	assert.Len(t, batches[2], 200)
}

func TestChunk_NonPositiveSizeFallsBack(t *testing.T) {
	batches := Chunk(makeEntries(DefaultBatchSize+1), 0)

	assert.Len(t, batches, 2)
	assert.Len(t, batches[0], DefaultBatchSize)
}

func TestChunk_Empty(t *testing.T) {
	assert.Nil(t, Chunk(nil, 10))
}
