// Package sweep evaluates independent work items on a bounded set of
// goroutines. Items are split into contiguous batches, one per worker, and
// each result is written to its own slot of a pre-sized buffer, so no locking
// is needed and the output order never depends on scheduling.
package sweep

import "sync"

// MaxWorkers caps the number of goroutines of one sweep.
const MaxWorkers = 8

// WorkerCount returns min(requested, MaxWorkers, items), at least 1 when
// there are items.
func WorkerCount(requested, items int) int {
	n := min(requested, MaxWorkers, items)
	if n < 1 && items > 0 {
		return 1
	}
	return max(n, 0)
}

// Batches splits n items into `workers` contiguous batches whose sizes
// differ by at most one. Batch i covers [bounds[i], bounds[i+1]).
func Batches(n, workers int) []int {
	bounds := make([]int, workers+1)
	base, extra := n/workers, n%workers
	for i := 0; i < workers; i++ {
		size := base
		if i < extra {
			size++
		}
		bounds[i+1] = bounds[i] + size
	}
	return bounds
}

// Map applies fn to every item and returns the results in item order.
// All items are evaluated even when some fail; the error of the lowest
// failing index is returned.
func Map[In, Out any](items []In, workers int, fn func(int, In) (Out, error)) ([]Out, error) {
	results := make([]Out, len(items))
	errs := make([]error, len(items))
	n := WorkerCount(workers, len(items))
	if n == 0 {
		return results, nil
	}

	bounds := Batches(len(items), n)
	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				results[i], errs[i] = fn(i, items[i])
			}
		}(bounds[w], bounds[w+1])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
