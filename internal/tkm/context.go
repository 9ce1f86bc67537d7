// Package tkm ties the event loop, the task pool and the entry pool into one
// handle for the application layer.
package tkm

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/anpopa/tkmviewer-sub000/internal/action"
	"github.com/anpopa/tkmviewer-sub000/internal/config"
	"github.com/anpopa/tkmviewer-sub000/internal/entrypool"
	"github.com/anpopa/tkmviewer-sub000/internal/logger"
	"github.com/anpopa/tkmviewer-sub000/internal/loop"
	"github.com/anpopa/tkmviewer-sub000/internal/metrics"
	"github.com/anpopa/tkmviewer-sub000/internal/task"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrCloseOnLoop is returned by Close when called from an action callback.
var ErrCloseOnLoop = errors.New("tkm: Close called on the event loop goroutine")

// Task is a unit of work run on the Context's task pool.
type Task = task.Task[*Context]

// NewTask builds a task for RunTask.
func NewTask(exec task.ExecFunc[*Context], status task.StatusFunc[*Context], data any) *Task {
	return task.New(exec, status, data)
}

// Option configures New.
type Option func(*options)

type options struct {
	workers    int
	registerer prometheus.Registerer
}

// WithWorkers overrides the task pool size (default runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRegisterer registers the Context's metrics on r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// Context owns one event loop goroutine, a task pool and the entry pool.
type Context struct {
	settings *config.Settings
	metrics  *metrics.Collector
	loop     *loop.Loop
	tasks    *task.Pool[*Context]
	entries  *entrypool.EntryPool
	loopDone chan struct{}
	log      log.Logger

	closeOnce sync.Once
}

// New starts a Context. Close must be called to stop it.
func New(settings *config.Settings, opts ...Option) (*Context, error) {
	if settings == nil {
		settings = config.NewSettings()
	}
	o := options{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		settings: settings,
		metrics:  metrics.New(),
		loop:     loop.New(),
		loopDone: make(chan struct{}),
		log:      logger.NewLoggerWithContext("tkm"),
	}
	if o.registerer != nil {
		if err := o.registerer.Register(c.metrics); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	c.tasks = task.NewPool(o.workers, c, task.WithObserver(c.metrics.TaskDone))
	c.entries = entrypool.New(settings, entrypool.WithMetrics(c.metrics))
	c.entries.Attach(c.loop)

	go func() {
		defer close(c.loopDone)
		if err := c.loop.Run(context.Background()); err != nil {
			c.log.Error().Err(err).Msg("Event loop exited")
		}
	}()

	c.log.Debug().Int("workers", o.workers).Msg("Context started")
	return c, nil
}

// ExecuteAction queues a on the entry pool. Kinds the entry pool does not
// handle are a programming error and panic.
func (c *Context) ExecuteAction(a *action.Action) error {
	switch a.Kind() {
	case action.KindOpenDatabaseFile,
		action.KindLoadSessions,
		action.KindLoadData,
		action.KindTerminate:
		return c.entries.Push(a)
	default:
		panic(fmt.Sprintf("tkm: unknown action kind %d", a.Kind()))
	}
}

// Settings returns the live settings read by LoadData.
func (c *Context) Settings() *config.Settings { return c.settings }

// Metrics returns the Context's Prometheus collector.
func (c *Context) Metrics() *metrics.Collector { return c.metrics }

// Entries returns the entry pool.
func (c *Context) Entries() *entrypool.EntryPool { return c.entries }

// DataLock blocks until the data lock is held.
func (c *Context) DataLock() *entrypool.Guard { return c.entries.Lock() }

// DataTryLock takes the data lock only if it is free.
func (c *Context) DataTryLock() (*entrypool.Guard, bool) { return c.entries.TryLock() }

// Snapshot returns a consistent copy of the loaded collections.
func (c *Context) Snapshot() entrypool.Snapshot { return c.entries.Snapshot() }

// RunTask submits t to the task pool, waiting for it when wait is set.
func (c *Context) RunTask(t *Task, wait bool) error {
	if wait {
		return t.RunWait(c.tasks)
	}
	if !t.Run(c.tasks) {
		return task.ErrPoolClosed
	}
	return nil
}

// Close terminates the entry pool after the queued actions, stops the loop
// and the task pool. Later calls return nil.
func (c *Context) Close() error {
	if c.loop.IsLoopGoroutine() {
		return ErrCloseOnLoop
	}

	c.closeOnce.Do(func() {
		err := c.entries.Push(action.NewTerminate(nil))
		if err != nil && !errors.Is(err, entrypool.ErrTerminated) {
			c.log.Warn().Err(err).Msg("Fail to queue terminate")
		}

		select {
		case <-c.entries.Done():
		case <-c.loopDone:
		}

		c.loop.Quit()
		<-c.loopDone
		c.tasks.Close()
		c.log.Debug().Msg("Context closed")
	})
	return nil
}
