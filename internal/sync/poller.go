// Package sync runs cancellable periodic jobs.
package sync

import (
	"context"
	gosync "sync"
	"time"
)

// TickTimeout is the maximum time a single tick of a Job may run before
// its context is cancelled.
const TickTimeout = 30 * time.Second

// Job is a running periodic task. The zero value is not usable; create
// one with Every.
type Job struct {
	interval time.Duration
	fn       func(ctx context.Context)

	ctx    context.Context
	cancel context.CancelFunc

	stopOnce gosync.Once
	done     chan struct{}
}

// Every starts a goroutine that calls fn once per interval until Stop is
// called. The first call happens one interval after Every returns. Calls
// never overlap; ticks missed while fn is running are dropped.
func Every(interval time.Duration, fn func(ctx context.Context)) *Job {
	ctx, cancel := context.WithCancel(context.Background())

	j := &Job{
		interval: interval,
		fn:       fn,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go j.run()

	return j
}

// Stop halts the job. It does not wait for an in-flight tick; use Done for
// that. Calling Stop more than once is safe.
func (j *Job) Stop() {
	j.stopOnce.Do(j.cancel)
}

// Stopped reports whether Stop has been called.
func (j *Job) Stopped() bool {
	return j.ctx.Err() != nil
}

// Done returns a channel that is closed once the job loop has exited.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			// select picks at random when a tick is buffered and Stop has
			// already been called.
			if j.ctx.Err() != nil {
				return
			}
			j.tick()
		}
	}
}

// tick runs fn with a bounded context that is detached from Stop, so a
// fetch already on the wire completes and its result can still be stored.
func (j *Job) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), TickTimeout)
	defer cancel()

	j.fn(ctx)
}
