// Package bridge hands closures from any goroutine to the single UI loop.
//
// Schedule never blocks: work is appended to an unbounded FIFO and one Run
// loop drains it one item at a time. Because there is exactly one consumer,
// closures run in submission order, which also gives every producer its own
// submission order.
package bridge

import (
	"context"
	"log/slog"
	"sync"
)

// Executor runs one closure on the UI thread. Window mode passes fyne.Do,
// console mode runs the closure in place.
type Executor func(fn func())

func Direct(fn func()) { fn() }

type Bridge struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

func New() *Bridge {
	return &Bridge{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Schedule enqueues fn for the UI loop and returns immediately.
// Work scheduled after Close is dropped.
func (b *Bridge) Schedule(fn func()) {
	if fn == nil {
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		slog.Debug("Drop work scheduled after bridge close")
		return
	}
	b.queue = append(b.queue, fn)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many closures wait to be run.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.queue)
}

// Run drains the queue through exec until ctx is done or Close is called.
// Work already queued when Close is called still runs.
func (b *Bridge) Run(ctx context.Context, exec Executor) error {
	if exec == nil {
		exec = Direct
	}

	for {
		b.drain(exec)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			b.drain(exec)
			return nil
		case <-b.wake:
		}
	}
}

// Close stops accepting work and lets Run return once the queue is empty.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

func (b *Bridge) drain(exec Executor) {
	for {
		fn, ok := b.pop()
		if !ok {
			return
		}
		runOne(exec, fn)
	}
}

func (b *Bridge) pop() (func(), bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		return nil, false
	}
	fn := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]
	return fn, true
}

func runOne(exec Executor, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("UI work panicked", "panic", r)
		}
	}()

	exec(fn)
}
