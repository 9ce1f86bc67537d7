package tkm

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anpopa/tkmviewer-sub000/internal/action"
	"github.com/anpopa/tkmviewer-sub000/internal/config"
	"github.com/anpopa/tkmviewer-sub000/internal/entrypool"
	"github.com/anpopa/tkmviewer-sub000/internal/store"
	"github.com/anpopa/tkmviewer-sub000/internal/store/storetest"
	"github.com/anpopa/tkmviewer-sub000/internal/task"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	c, err := New(config.NewSettings(), append([]Option{WithWorkers(2)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

type outcome struct {
	status action.Status
	err    error
}

func execute(t *testing.T, c *Context, build func(action.Callback) *action.Action) outcome {
	t.Helper()
	ch := make(chan outcome, 1)
	require.NoError(t, c.ExecuteAction(build(func(_ *action.Action, s action.Status, err error) {
		ch <- outcome{s, err}
	})))
	select {
	case o := <-ch:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("action never completed")
		return outcome{}
	}
}

func seed(t *testing.T) *storetest.DB {
	fx := storetest.New(t)
	fx.Device(1, "rpi4")
	fx.Session(1, "abc123", "boot-1", 1, 4)
	for ts := uint64(100); ts < 200; ts += 10 {
		fx.Insert(store.CPUStatTable, storetest.Stamp(1, ts).With(storetest.Row{"CPUStatName": "cpu", "CPUStatAll": 10}))
	}
	return fx
}

// --- actions ---

func TestExecuteAction_ShouldOpenLoadSessionsAndLoadData(t *testing.T) {
	c := newTestContext(t)
	fx := seed(t)

	o := execute(t, c, func(cb action.Callback) *action.Action { return action.NewOpenDatabaseFile(fx.Path(), cb) })
	require.Equal(t, action.StatusComplete, o.status, "%v", o.err)
	o = execute(t, c, action.NewLoadSessions)
	require.Equal(t, action.StatusComplete, o.status)
	o = execute(t, c, func(cb action.Callback) *action.Action {
		return action.NewLoadDataRange("abc123", "100", "150", cb)
	})
	require.Equal(t, action.StatusComplete, o.status)

	g := c.DataLock()
	assert.Len(t, g.Sessions(), 1)
	assert.Len(t, g.CPUStat(), 5)
	g.Unlock()

	s := c.Snapshot()
	assert.Len(t, s.CPUStat, 5)
	assert.Same(t, c.Entries(), c.Entries())
}

func TestExecuteAction_WhenKindUnknown_ShouldPanic(t *testing.T) {
	c := newTestContext(t)
	assert.Panics(t, func() {
		_ = c.ExecuteAction(action.New(action.Kind(99), nil, nil, nil))
	})
}

func TestDataTryLock_WhenLockHeld_ShouldFail(t *testing.T) {
	c := newTestContext(t)

	g := c.DataLock()
	_, ok := c.DataTryLock()
	assert.False(t, ok)
	g.Unlock()

	g, ok = c.DataTryLock()
	require.True(t, ok)
	g.Unlock()
}

// --- tasks ---

func TestRunTask_ShouldPassContextToExec(t *testing.T) {
	c := newTestContext(t)

	var got *Context
	tk := NewTask(func(_ context.Context, _ *Task, shared *Context) error {
		got = shared
		return nil
	}, nil, nil)

	require.NoError(t, c.RunTask(tk, true))
	assert.Same(t, c, got)
}

func TestRunTask_WhenNotWaiting_ShouldStillRun(t *testing.T) {
	c := newTestContext(t)

	var ran atomic.Bool
	tk := NewTask(func(context.Context, *Task, *Context) error {
		ran.Store(true)
		return nil
	}, nil, nil)

	require.NoError(t, c.RunTask(tk, false))
	require.NoError(t, tk.Wait())
	assert.True(t, ran.Load())
}

// --- Close ---

func TestClose_ShouldBeIdempotentAndRejectLaterActions(t *testing.T) {
	c, err := New(nil, WithWorkers(1))
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	err = c.ExecuteAction(action.NewLoadSessions(nil))
	assert.ErrorIs(t, err, entrypool.ErrTerminated)

	tk := NewTask(func(context.Context, *Task, *Context) error { return nil }, nil, nil)
	assert.ErrorIs(t, c.RunTask(tk, true), task.ErrPoolClosed)
}

func TestClose_ShouldHandleQueuedActionsFirst(t *testing.T) {
	c, err := New(nil, WithWorkers(1))
	require.NoError(t, err)
	fx := seed(t)

	var order []string
	done := make(chan struct{}, 2)
	record := func(name string) action.Callback {
		return func(*action.Action, action.Status, error) {
			order = append(order, name)
			done <- struct{}{}
		}
	}
	require.NoError(t, c.ExecuteAction(action.NewOpenDatabaseFile(fx.Path(), record("open"))))
	require.NoError(t, c.ExecuteAction(action.NewLoadSessions(record("sessions"))))

	require.NoError(t, c.Close())
	assert.Len(t, done, 2)
	assert.Equal(t, []string{"open", "sessions"}, order)
}

func TestClose_WhenCalledFromCallback_ShouldRefuse(t *testing.T) {
	c := newTestContext(t)

	errc := make(chan error, 1)
	require.NoError(t, c.ExecuteAction(action.NewLoadSessions(func(*action.Action, action.Status, error) {
		errc <- c.Close()
	})))

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrCloseOnLoop)
	case <-time.After(5 * time.Second):
		t.Fatal("callback never ran")
	}
}

// --- metrics ---

func TestNew_WhenRegistererGiven_ShouldRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	newTestContext(t, WithRegisterer(reg))

	_, err := New(nil, WithRegisterer(reg))
	require.Error(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}
