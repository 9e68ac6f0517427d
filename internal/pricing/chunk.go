package pricing

// Chunk splits entries into contiguous batches of at most size entries,
// preserving relative order; the final batch may be shorter. A non-positive
// size falls back to DefaultBatchSize. Concatenating the returned batches
// reproduces the input exactly.
func Chunk(entries []Entry, size int) [][]Entry {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(entries) == 0 {
		return nil
	}

	batches := make([][]Entry, 0, (len(entries)+size-1)/size)
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, entries[start:end])
	}
	return batches
}
