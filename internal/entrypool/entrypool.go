// Package entrypool owns the open database and the decoded collections.
//
// Actions are queued by any goroutine and handled one at a time on the event
// loop goroutine, which is the only writer. Readers take the data lock (or a
// Snapshot) to see a consistent set of collections.
package entrypool

import (
	"context"
	"errors"
	"sync"

	"github.com/anpopa/tkmviewer-sub000/internal/action"
	"github.com/anpopa/tkmviewer-sub000/internal/config"
	"github.com/anpopa/tkmviewer-sub000/internal/logger"
	"github.com/anpopa/tkmviewer-sub000/internal/loop"
	"github.com/anpopa/tkmviewer-sub000/internal/metrics"
	"github.com/anpopa/tkmviewer-sub000/internal/store"

	"github.com/phuslu/log"
)

var (
	ErrNoDatabase  = errors.New("no database open")
	ErrTerminated  = errors.New("entry pool terminated")
	ErrInvalidArgs = errors.New("invalid action arguments")
)

// Option configures an EntryPool.
type Option func(*EntryPool)

// WithMetrics records action outcomes and collection sizes on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *EntryPool) { p.metrics = c }
}

// EntryPool is a loop.Source processing queued actions in FIFO order.
type EntryPool struct {
	settings *config.Settings
	metrics  *metrics.Collector
	loop     *loop.Loop
	ctx      context.Context
	log      log.Logger

	qmu        sync.Mutex
	queue      []*action.Action
	terminated bool
	done       chan struct{}

	// mu is the data lock. store, path and data are written only on the
	// loop goroutine, and only while mu is held.
	mu    sync.Mutex
	store *store.Store
	path  string
	data  Snapshot
}

// New returns an idle pool. settings is read on every LoadData.
func New(settings *config.Settings, opts ...Option) *EntryPool {
	if settings == nil {
		panic("entrypool: nil settings")
	}
	p := &EntryPool{
		settings: settings,
		ctx:      context.Background(),
		log:      logger.NewLoggerWithContext("entrypool"),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Attach registers the pool as a source on l.
func (p *EntryPool) Attach(l *loop.Loop) {
	p.qmu.Lock()
	p.loop = l
	p.qmu.Unlock()
	l.Attach(p)
}

// Push queues a for handling on the loop goroutine. Once a Terminate
// action has been queued every later push fails with ErrTerminated.
func (p *EntryPool) Push(a *action.Action) error {
	kind := a.Kind()

	p.qmu.Lock()
	if p.terminated {
		p.qmu.Unlock()
		return ErrTerminated
	}
	if kind == action.KindTerminate {
		p.terminated = true
	}
	p.queue = append(p.queue, a)
	depth := len(p.queue)
	p.metrics.SetQueueDepth(depth)
	l := p.loop
	p.qmu.Unlock()

	p.log.Debug().Str("action", a.ID()).Stringer("kind", kind).Int("depth", depth).Msg("Action queued")

	if l != nil {
		l.Wakeup()
	}
	return nil
}

// Done is closed once a Terminate action has been handled.
func (p *EntryPool) Done() <-chan struct{} { return p.done }

// Pending returns the number of queued actions.
func (p *EntryPool) Pending() int {
	p.qmu.Lock()
	defer p.qmu.Unlock()
	return len(p.queue)
}

// Prepare implements loop.Source.
func (p *EntryPool) Prepare() bool {
	return p.Pending() > 0
}

// Dispatch implements loop.Source. It handles exactly one queued action and
// returns false after a Terminate, detaching the pool from the loop.
func (p *EntryPool) Dispatch() bool {
	p.qmu.Lock()
	if len(p.queue) == 0 {
		p.qmu.Unlock()
		return true
	}
	a := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	p.metrics.SetQueueDepth(len(p.queue))
	p.qmu.Unlock()

	switch a.Kind() {
	case action.KindOpenDatabaseFile:
		p.openDatabaseFile(a)
	case action.KindLoadSessions:
		p.loadSessions(a)
	case action.KindLoadData:
		p.loadData(a)
	case action.KindTerminate:
		p.terminate(a)
		return false
	default:
		p.finish(a, action.StatusFailed, ErrInvalidArgs)
	}
	return true
}

// Path returns the path of the open database, or "" when none is open.
func (p *EntryPool) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// finish reports the action outcome. It runs outside the data lock so the
// callback may read the pool.
func (p *EntryPool) finish(a *action.Action, status action.Status, err error) {
	ev := p.log.Info()
	if status == action.StatusFailed {
		ev = p.log.Warn().Err(err)
	}
	ev.Str("action", a.ID()).Stringer("kind", a.Kind()).Stringer("status", status).Msg("Action done")

	p.metrics.ActionDone(a.Kind(), status)
	a.Notify(status, err)
}
