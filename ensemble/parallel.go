package ensemble

import (
	"runtime"
	"sync"
)

// runParallel splits [0, items) into contiguous chunks, one per available
// CPU, and invokes fn(start, end) for each chunk on its own goroutine. It
// returns once every chunk has completed.
func runParallel(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}
	chunk := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunk {
		end := start + chunk
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
