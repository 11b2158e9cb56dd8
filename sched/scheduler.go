// Package sched provides the single-threaded timer facility the sync
// state machine in package logic is built on: schedule-after-delay,
// idempotent cancel, and a monotonic clock, all funneled through one
// dispatch goroutine so callbacks never run concurrently with each
// other — the same guarantee an NDN client library's event loop gives
// its application callbacks.
package sched

import (
	"sync"
	"time"
)

// Handle identifies a scheduled timer for later cancellation.
type Handle uint64

// Scheduler schedules callbacks to run, one at a time, on its own
// dispatch goroutine. No preemption: a callback runs to completion
// before the next one starts, and timers fire at or after their delay,
// never earlier.
type Scheduler interface {
	// Schedule runs f on the dispatch goroutine after delay.
	Schedule(delay time.Duration, f func()) Handle
	// Cancel prevents a scheduled callback from running. Idempotent:
	// canceling an already-fired or already-canceled handle is a no-op.
	Cancel(h Handle)
	// Now returns microseconds elapsed on a monotonic clock since the
	// scheduler was created.
	Now() int64
	// Stop shuts down the dispatch goroutine. Pending timers are
	// canceled; already-queued callbacks may still run.
	Stop()
}

// EventLoop is the default Scheduler, backed by a single dispatch
// goroutine that every fired timer's callback is funneled through.
type EventLoop struct {
	start time.Time

	mu     sync.Mutex
	timers map[Handle]*time.Timer
	nextID Handle

	queue chan func()
	done  chan struct{}
	once  sync.Once
}

var _ Scheduler = (*EventLoop)(nil)

// NewEventLoop creates and starts a new EventLoop scheduler.
func NewEventLoop() *EventLoop {
	l := &EventLoop{
		start:  time.Now(),
		timers: make(map[Handle]*time.Timer),
		queue:  make(chan func(), 64),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *EventLoop) run() {
	for {
		select {
		case f := <-l.queue:
			f()
		case <-l.done:
			return
		}
	}
}

// Schedule implements Scheduler.
func (l *EventLoop) Schedule(delay time.Duration, f func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++

	l.timers[id] = time.AfterFunc(delay, func() {
		l.mu.Lock()
		_, active := l.timers[id]
		if active {
			delete(l.timers, id)
		}
		l.mu.Unlock()
		if !active {
			return
		}
		select {
		case l.queue <- f:
		case <-l.done:
		}
	})
	return id
}

// Cancel implements Scheduler.
func (l *EventLoop) Cancel(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.timers[h]; ok {
		t.Stop()
		delete(l.timers, h)
	}
}

// Now implements Scheduler.
func (l *EventLoop) Now() int64 {
	return time.Since(l.start).Microseconds()
}

// Stop implements Scheduler.
func (l *EventLoop) Stop() {
	l.once.Do(func() {
		close(l.done)
		l.mu.Lock()
		for id, t := range l.timers {
			t.Stop()
			delete(l.timers, id)
		}
		l.mu.Unlock()
	})
}
