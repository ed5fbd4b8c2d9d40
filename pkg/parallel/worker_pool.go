package parallel

import (
	"fmt"
	"runtime"
	"sync"
)

// WorkerPool manages a fixed set of worker goroutines consuming tasks
// from a shared queue. Conversion jobs submit one task per chunk and
// wait for the pool to drain.
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
}

// NewWorkerPool creates a new worker pool with the specified number of
// workers. A count <= 0 defaults to GOMAXPROCS.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}

	pool.start()
	return pool
}

// Workers returns the configured worker count.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		// Recover from panics in tasks to prevent worker crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("Worker panic recovered: %v\n", r)
				}
			}()
			task()
		}()
	}
}

// Submit adds a task to the worker pool.
// Returns false if the pool is closed, true if the task was submitted.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	wp.taskQueue <- task
	return true
}

// Close stops accepting tasks and waits for all queued tasks to finish.
// Safe to call multiple times.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// RunChunks partitions [0, n) into contiguous chunks of chunkSize items
// and executes fn(chunkIndex, start, end) for each chunk on a pool of
// the given size, blocking until every chunk has completed. Chunk
// indices are dense and ordered by position, so callers can reassemble
// per-chunk results deterministically. The first non-nil error is
// returned; remaining chunks still run to completion.
func RunChunks(workers, n, chunkSize int, fn func(chunk, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = n
	}

	pool := NewWorkerPool(workers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for chunk, start := 0, 0; start < n; chunk, start = chunk+1, start+chunkSize {
		chunk, start := chunk, start
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			if err := fn(chunk, start, end); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}

	wg.Wait()
	pool.Close()
	return firstErr
}

// NumChunks returns how many chunks RunChunks produces for n items.
func NumChunks(n, chunkSize int) int {
	if n <= 0 {
		return 0
	}
	if chunkSize <= 0 {
		return 1
	}
	return (n + chunkSize - 1) / chunkSize
}
