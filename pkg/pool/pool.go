package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// job is sent to the workers of a Pool.
//
// A job either evaluates f once at index i, or, when searching, keeps
// evaluating f until enough non nil results have been produced.
type job struct {
	search bool
	i      int
	f      func(int) interface{}
	// remaining counts the results still missing when searching
	remaining *int64
	results   []interface{}
	wg        *sync.WaitGroup
}

func (j job) run() {
	defer j.wg.Done()
	if !j.search {
		j.results[j.i] = j.f(j.i)
		return
	}
	for atomic.LoadInt64(j.remaining) > 0 {
		res := j.f(0)
		if res == nil {
			continue
		}
		i := atomic.AddInt64(j.remaining, -1)
		if i < 0 {
			return
		}
		j.results[i] = res
	}
}

// Pool represents a pool of workers, used for parallelizing functions.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current goroutine instead.
//
// By creating a pool, you avoid the overhead of spinning up goroutines for
// each new operation.
type Pool struct {
	jobs        chan job
	workerCount int
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		jobs:        make(chan job),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go func() {
			for j := range p.jobs {
				j.run()
			}
		}()
	}
	return p
}

// TearDown stops the workers of the pool. The pool must not be used afterwards.
func (p *Pool) TearDown() {
	close(p.jobs)
}

// Workers returns the number of goroutines doing work for this pool, 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// Search queries the function f, until count successes are found.
//
// f is supposed to try a single candidate, returning nil if that candidate isn't
// successful.
//
// The result will be an array containing the first count successes.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			for results[i] == nil {
				results[i] = f()
			}
		}
		return results
	}

	remaining := int64(count)
	var wg sync.WaitGroup
	wg.Add(p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.jobs <- job{
			search:    true,
			f:         func(int) interface{} { return f() },
			remaining: &remaining,
			results:   results,
			wg:        &wg,
		}
	}
	wg.Wait()
	return results
}

// Parallelize calls a function count times, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		p.jobs <- job{
			i:       i,
			f:       f,
			results: results,
			wg:      &wg,
		}
	}
	wg.Wait()
	return results
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// This means acquiring a lock whenever a read happens, so be aware of that
// for performance or concurrency reasons.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
//
// When called concurrently, which caller gets which bytes is raced, but no
// two callers ever observe the same bytes.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
