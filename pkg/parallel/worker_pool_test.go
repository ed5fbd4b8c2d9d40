package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestWorkerPoolBasicOperations tests basic worker pool functionality
func TestWorkerPoolBasicOperations(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	executed := false
	success := pool.Submit(func() {
		executed = true
	})

	if !success {
		t.Error("Task submission failed")
	}

	// Wait for task to complete
	pool.Close()

	if !executed {
		t.Error("Task was not executed")
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := NewWorkerPool(10)
	defer pool.Close()

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() {
				atomic.AddInt64(&counter, 1)
			})
		}()
	}

	wg.Wait()
	pool.Close()

	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close return false
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(4)

	success := pool.Submit(func() {
		time.Sleep(10 * time.Millisecond)
	})
	if !success {
		t.Error("Task submission before close should succeed")
	}

	pool.Close()

	success = pool.Submit(func() {
		t.Error("This task should never execute")
	})

	if success {
		t.Error("Task submission after close should return false")
	}
}

// TestWorkerPoolMultipleClose tests that closing multiple times is safe
func TestWorkerPoolMultipleClose(t *testing.T) {
	pool := NewWorkerPool(4)

	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			time.Sleep(1 * time.Millisecond)
		})
	}

	pool.Close()
	pool.Close()
	pool.Close()
}

// TestWorkerPoolWithPanic tests that panics in tasks don't crash the pool
func TestWorkerPoolWithPanic(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter int64

	for i := 0; i < 5; i++ {
		pool.Submit(func() {
			panic("intentional panic")
		})
	}

	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}

	pool.Close()

	if counter != 10 {
		t.Errorf("Expected counter 10, got %d", counter)
	}
}

// TestRunChunksCoversRange verifies dense ordered chunks covering [0, n)
// exactly once.
func TestRunChunksCoversRange(t *testing.T) {
	const n, chunkSize = 1037, 100

	covered := make([]int32, n)
	var maxChunk int64 = -1

	err := RunChunks(4, n, chunkSize, func(chunk, start, end int) error {
		if start != chunk*chunkSize {
			t.Errorf("chunk %d starts at %d", chunk, start)
		}
		for i := start; i < end; i++ {
			atomic.AddInt32(&covered[i], 1)
		}
		for {
			cur := atomic.LoadInt64(&maxChunk)
			if int64(chunk) <= cur || atomic.CompareAndSwapInt64(&maxChunk, cur, int64(chunk)) {
				break
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunChunks failed: %v", err)
	}

	for i, c := range covered {
		if c != 1 {
			t.Fatalf("index %d covered %d times", i, c)
		}
	}
	if want := int64(NumChunks(n, chunkSize) - 1); maxChunk != want {
		t.Errorf("highest chunk index %d, want %d", maxChunk, want)
	}
}

// TestRunChunksPropagatesFirstError verifies error collection.
func TestRunChunksPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")

	err := RunChunks(4, 100, 10, func(chunk, start, end int) error {
		if chunk == 3 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

// TestRunChunksEmpty verifies n <= 0 is a no-op.
func TestRunChunksEmpty(t *testing.T) {
	called := false
	err := RunChunks(4, 0, 10, func(chunk, start, end int) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunChunks failed: %v", err)
	}
	if called {
		t.Error("fn called for empty range")
	}
}

// TestNumChunks checks the chunk arithmetic.
func TestNumChunks(t *testing.T) {
	cases := []struct {
		n, chunkSize, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 0, 1},
		{1037, 100, 11},
	}
	for _, c := range cases {
		if got := NumChunks(c.n, c.chunkSize); got != c.want {
			t.Errorf("NumChunks(%d, %d) = %d, want %d", c.n, c.chunkSize, got, c.want)
		}
	}
}
