package task

import (
	"context"
	"errors"
	"sync"

	"github.com/anpopa/tkmviewer-sub000/internal/logger"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is reported for tasks pushed to, or still queued on, a
// closed pool.
var ErrPoolClosed = errors.New("task pool closed")

// Option configures a Pool.
type Option func(*options)

type options struct {
	observe func(Status)
}

// WithObserver registers fn to be called with every task outcome.
func WithObserver(fn func(Status)) Option {
	return func(o *options) { o.observe = fn }
}

// Pool runs queued tasks on a fixed number of workers.
type Pool[C any] struct {
	shared C
	opts   options

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*Task[C]
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	log    log.Logger

	closeOnce sync.Once
}

// NewPool starts workers goroutines sharing shared. workers below 1 is
// treated as 1.
func NewPool[C any](workers int, shared C, opts ...Option) *Pool[C] {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	p := &Pool[C]{
		shared: shared,
		ctx:    gctx,
		cancel: cancel,
		group:  g,
		log:    logger.NewLoggerWithContext("taskpool"),
	}
	for _, o := range opts {
		o(&p.opts)
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		g.Go(p.worker)
	}
	p.log.Debug().Int("workers", workers).Msg("Task pool started")
	return p
}

// Push queues t. It returns false once Close has begun.
func (p *Pool[C]) Push(t *Task[C]) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.queue = append(p.queue, t)
	p.cond.Signal()
	return true
}

// Pending returns the number of queued, not yet started tasks.
func (p *Pool[C]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Close stops accepting tasks, fails the ones still queued with
// ErrPoolClosed and waits for running tasks to finish.
func (p *Pool[C]) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		dropped := p.queue
		p.queue = nil
		p.cond.Broadcast()
		p.mu.Unlock()

		for _, t := range dropped {
			p.complete(t, ErrPoolClosed)
		}
		if len(dropped) > 0 {
			p.log.Debug().Int("dropped", len(dropped)).Msg("Dropped queued tasks")
		}

		_ = p.group.Wait()
		p.cancel()
		p.log.Debug().Msg("Task pool stopped")
	})
}

func (p *Pool[C]) next() (*Task[C], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	t := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return t, true
}

func (p *Pool[C]) worker() error {
	for {
		t, ok := p.next()
		if !ok {
			return nil
		}
		err := t.invoke(p.ctx, p.shared)
		if err != nil {
			p.log.Warn().Err(err).Msg("Task failed")
		}
		p.complete(t, err)
	}
}

func (p *Pool[C]) complete(t *Task[C], err error) {
	status := StatusComplete
	if err != nil {
		status = StatusFailed
	}
	defer t.finish(err)

	if err := t.notify(status); err != nil {
		p.log.Error().Err(err).Stringer("status", status).Msg("Task status callback failed")
	}
	if p.opts.observe != nil {
		p.opts.observe(status)
	}
}
