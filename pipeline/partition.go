package pipeline

import "fmt"

// Partition slices items into contiguous batches of at most size elements.
// Concatenating the batches in order reproduces items exactly; the last
// batch may be shorter than size. An empty input yields no batches.
//
// size must be >= 1. A smaller value is a programming error, not a
// per-request condition, and panics; the recovery middleware turns it into
// a server error.
func Partition[T any](items []T, size int) [][]T {
	if size < 1 {
		panic(fmt.Sprintf("pipeline: batch size must be >= 1, got %d", size))
	}

	if len(items) == 0 {
		return nil
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
