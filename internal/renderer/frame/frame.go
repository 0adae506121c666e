// Package frame provides next-frame scheduling. Work registered with a
// Scheduler runs once, at the host's next paint opportunity, never on a
// wall-clock timer. The overlay renderer relies on this to coalesce
// refresh storms down to the paint cadence.
package frame

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxFPS bounds the paint cadence when none is configured.
const DefaultMaxFPS = 60

// Scheduler schedules a callback to run at the next frame.
type Scheduler interface {
	// Schedule registers fn to run exactly once on the next frame.
	Schedule(fn func())
}

// Queue is the standard Scheduler. Callbacks accumulate until the host
// runs a frame; a callback scheduled from inside a running frame waits
// for the following frame.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// NewQueue creates an empty frame queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule implements Scheduler. Safe to call from any goroutine.
func (q *Queue) Schedule(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, fn)
}

// Pending returns the number of callbacks waiting for the next frame.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// RunFrame runs every callback scheduled before this frame, in order,
// and returns how many ran. Callbacks scheduled during the frame are
// left queued for the next one.
func (q *Queue) RunFrame() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Run drives frames at up to maxFPS until ctx is cancelled. Callbacks
// execute on the calling goroutine, which therefore acts as the UI
// thread for everything they touch.
func (q *Queue) Run(ctx context.Context, maxFPS int) {
	if maxFPS <= 0 {
		maxFPS = DefaultMaxFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(maxFPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.RunFrame()
		}
	}
}
