// Package workerspool provides the chunked parallel-for used by the CPU
// operator kernels to spread element-wise and row-wise loops over goroutines.
package workerspool

import (
	"runtime"
	"sync"
)

// Pool bounds how many goroutines the kernels of one process use.
//
// maxParallelism semantics: 0 disables parallelism (all work runs inline on
// the calling goroutine), a negative value means one goroutine per chunk with
// no bound, and a positive value is the number of concurrent workers.
type Pool struct {
	maxParallelism int
}

// New returns a Pool with the default parallelism (runtime.NumCPU()).
func New() *Pool {
	return &Pool{maxParallelism: runtime.NumCPU()}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism != 0).
func (p *Pool) IsEnabled() bool { return p.maxParallelism != 0 }

// MaxParallelism returns the current parallelism target.
func (p *Pool) MaxParallelism() int { return p.maxParallelism }

// SetMaxParallelism changes the parallelism target. Only change it while no
// work is in flight; changing it mid-run is undefined.
func (p *Pool) SetMaxParallelism(maxParallelism int) {
	p.maxParallelism = maxParallelism
}

// For splits the half-open range [0, n) into chunks of at least minChunk
// elements and runs fn(from, to) for each chunk, possibly concurrently.
// It returns after every chunk finished.
//
// fn must be safe to call concurrently for disjoint ranges. For n <= minChunk,
// or with parallelism disabled, fn runs inline exactly once for the whole
// range and nothing is spawned.
func (p *Pool) For(n, minChunk int, fn func(from, to int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if !p.IsEnabled() || n <= minChunk {
		fn(0, n)
		return
	}

	numChunks := (n + minChunk - 1) / minChunk
	if p.maxParallelism > 0 && numChunks > p.maxParallelism {
		numChunks = p.maxParallelism
	}
	chunkSize := (n + numChunks - 1) / numChunks

	var wg sync.WaitGroup
	for from := 0; from < n; from += chunkSize {
		to := min(from+chunkSize, n)
		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			fn(from, to)
		}(from, to)
	}
	wg.Wait()
}
