// Package progress emits rate-limited progress lines for long batch
// jobs through a slog.Logger, the batch analog of a TTY progress bar.
package progress

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between progress lines.
const DefaultInterval = 2 * time.Second

// Reporter logs "progress" records for a labelled operation. Safe for
// concurrent Add calls from pool workers.
type Reporter struct {
	logger   *slog.Logger
	label    string
	total    int64
	interval time.Duration

	mu    sync.Mutex
	count int64
	last  time.Time
	start time.Time
}

// NewReporter creates a reporter for an operation processing total
// items; pass total <= 0 when the item count is unknown up front.
func NewReporter(logger *slog.Logger, label string, total int64) *Reporter {
	now := time.Now()
	return &Reporter{
		logger:   logger,
		label:    label,
		total:    total,
		interval: DefaultInterval,
		start:    now,
		last:     now,
	}
}

// Add records n processed items, emitting a progress line when the
// reporting interval has elapsed.
func (r *Reporter) Add(n int64) {
	r.mu.Lock()
	r.count += n
	now := time.Now()
	if now.Sub(r.last) < r.interval {
		r.mu.Unlock()
		return
	}
	r.last = now
	count := r.count
	r.mu.Unlock()

	r.emit(count, now, false)
}

// Done emits the final summary line with overall rate and duration.
func (r *Reporter) Done() {
	r.mu.Lock()
	count := r.count
	r.mu.Unlock()
	r.emit(count, time.Now(), true)
}

// Count returns the number of items recorded so far.
func (r *Reporter) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *Reporter) emit(count int64, now time.Time, final bool) {
	elapsed := now.Sub(r.start)
	attrs := []any{
		"processed", count,
		"elapsed_sec", elapsed.Seconds(),
	}
	if elapsed > 0 {
		attrs = append(attrs, "per_sec", int64(float64(count)/elapsed.Seconds()))
	}
	if r.total > 0 {
		attrs = append(attrs, "total", r.total, "pct", float64(count)*100/float64(r.total))
	}

	msg := r.label + " progress"
	if final {
		msg = r.label + " complete"
	}
	r.logger.Info(msg, attrs...)
}
