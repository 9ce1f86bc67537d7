// Package loop is a single-goroutine cooperative event loop. Sources are
// polled and dispatched only on the goroutine running Run, so anything they
// touch has at most one writer.
package loop

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/anpopa/tkmviewer-sub000/internal/logger"

	"github.com/phuslu/log"
)

// Source is polled on every loop iteration.
type Source interface {
	// Prepare reports whether the source has work pending.
	Prepare() bool

	// Dispatch handles one unit of work. Returning false detaches the source.
	Dispatch() bool
}

// Loop runs attached sources on one goroutine.
type Loop struct {
	mu      sync.Mutex
	sources []Source

	wake     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once

	running atomic.Bool
	gid     atomic.Uint64

	log log.Logger
}

// New returns an idle loop. Call Run to start it.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		log:  logger.NewLoggerWithContext("loop"),
	}
}

// Attach adds s to the set of polled sources and wakes the loop.
func (l *Loop) Attach(s Source) {
	l.mu.Lock()
	l.sources = append(l.sources, s)
	l.mu.Unlock()
	l.Wakeup()
}

func (l *Loop) detach(s Source) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.sources {
		if cur == s {
			l.sources = append(l.sources[:i], l.sources[i+1:]...)
			return
		}
	}
}

// Wakeup makes the loop poll its sources. It never blocks and repeated
// calls before the loop wakes collapse into one.
func (l *Loop) Wakeup() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Quit asks Run to return. Pending work is not dispatched.
func (l *Loop) Quit() {
	l.quitOnce.Do(func() { close(l.quit) })
}

// Running reports whether Run is active.
func (l *Loop) Running() bool { return l.running.Load() }

// IsLoopGoroutine reports whether the caller is the goroutine running Run.
func (l *Loop) IsLoopGoroutine() bool {
	id := l.gid.Load()
	return id != 0 && id == goroutineID()
}

// Run drives the loop until Quit is called or ctx ends. It returns nil on
// Quit and ctx.Err() on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		panic("loop: Run called twice")
	}
	l.gid.Store(goroutineID())
	defer func() {
		l.gid.Store(0)
		l.running.Store(false)
	}()

	l.log.Debug().Msg("Event loop started")
	defer l.log.Debug().Msg("Event loop stopped")

	for {
		select {
		case <-l.quit:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if l.iterate() {
			continue
		}

		select {
		case <-l.wake:
		case <-l.quit:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// iterate dispatches every ready source once. It reports whether any work
// was done.
func (l *Loop) iterate() bool {
	l.mu.Lock()
	sources := append([]Source(nil), l.sources...)
	l.mu.Unlock()

	busy := false

	for _, s := range sources {
		if !s.Prepare() {
			continue
		}
		busy = true
		if !s.Dispatch() {
			l.detach(s)
		}
	}
	return busy
}
