package massprop

import "sync"

// minChunk keeps tiny meshes on a single goroutine.
const minChunk = 1024

// reduce splits [0,n) into contiguous chunks, evaluates fn on each, and
// returns the partial results in chunk order so that merging them is
// deterministic for a given worker count.
func reduce[T any](workers, n int, fn func(lo, hi int) T) []T {
	chunks := workers
	if limit := (n + minChunk - 1) / minChunk; chunks > limit {
		chunks = limit
	}
	if chunks <= 1 {
		return []T{fn(0, n)}
	}

	out := make([]T, chunks)
	size := (n + chunks - 1) / chunks
	var wg sync.WaitGroup
	for c := 0; c < chunks; c++ {
		lo := c * size
		hi := min(lo+size, n)
		wg.Add(1)
		go func(c, lo, hi int) {
			defer wg.Done()
			out[c] = fn(lo, hi)
		}(c, lo, hi)
	}
	wg.Wait()
	return out
}
