package task

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shared struct {
	name string
}

func newTestPool(t *testing.T, workers int, opts ...Option) *Pool[*shared] {
	t.Helper()
	p := NewPool(workers, &shared{name: "ctx"}, opts...)
	t.Cleanup(p.Close)
	return p
}

// --- RunWait ---

func TestRunWait_ShouldReturnAfterStatusCallback(t *testing.T) {
	p := newTestPool(t, 2)

	var (
		gotShared string
		gotStatus Status
		callbacks atomic.Int32
	)
	tk := New(
		func(_ context.Context, _ *Task[*shared], s *shared) error {
			gotShared = s.name
			return nil
		},
		func(st Status, _ *Task[*shared]) {
			gotStatus = st
			callbacks.Add(1)
		},
		nil,
	)

	require.NoError(t, tk.RunWait(p))

	assert.Equal(t, "ctx", gotShared)
	assert.Equal(t, StatusComplete, gotStatus)
	assert.Equal(t, int32(1), callbacks.Load())
	assert.True(t, tk.Done())
}

func TestRunWait_WhenExecFails_ShouldReportFailedAndReturnError(t *testing.T) {
	p := newTestPool(t, 1)
	boom := errors.New("boom")

	var gotStatus Status
	tk := New(
		func(context.Context, *Task[*shared], *shared) error { return boom },
		func(st Status, _ *Task[*shared]) { gotStatus = st },
		nil,
	)

	err := tk.RunWait(p)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, gotStatus)
	assert.ErrorIs(t, tk.Err(), boom)
}

func TestRunWait_WhenExecPanics_ShouldStillComplete(t *testing.T) {
	p := newTestPool(t, 1)

	var gotStatus atomic.Int32
	gotStatus.Store(-1)
	tk := New(
		func(context.Context, *Task[*shared], *shared) error { panic("kaboom") },
		func(st Status, _ *Task[*shared]) { gotStatus.Store(int32(st)) },
		nil,
	)

	done := make(chan error, 1)
	go func() { done <- tk.RunWait(p) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kaboom")
	case <-time.After(2 * time.Second):
		t.Fatal("RunWait never returned")
	}
	assert.Equal(t, int32(StatusFailed), gotStatus.Load())

	// The worker survives the panic.
	ok := New(func(context.Context, *Task[*shared], *shared) error { return nil }, nil, nil)
	assert.NoError(t, ok.RunWait(p))
}

// lockedBuffer collects log output written from worker goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWait_WhenStatusCallbackPanics_ShouldCompleteAndLog(t *testing.T) {
	saved := log.DefaultLogger
	t.Cleanup(func() { log.DefaultLogger = saved })
	out := &lockedBuffer{}
	log.DefaultLogger = log.Logger{Level: log.InfoLevel, Writer: &log.IOWriter{Writer: out}}

	p := newTestPool(t, 1)
	tk := New(
		func(context.Context, *Task[*shared], *shared) error { return nil },
		func(Status, *Task[*shared]) { panic("callback") },
		nil,
	)
	assert.NoError(t, tk.RunWait(p))

	logged := out.String()
	assert.Contains(t, logged, "Task status callback failed")
	assert.Contains(t, logged, "status callback panicked: callback")
	assert.Contains(t, logged, `"component":"taskpool"`)
}

// --- Run / Push ---

func TestRun_ShouldExecuteEveryTask(t *testing.T) {
	p := newTestPool(t, 4)

	var ran atomic.Int32
	tasks := make([]*Task[*shared], 50)
	for i := range tasks {
		tasks[i] = New(func(context.Context, *Task[*shared], *shared) error {
			ran.Add(1)
			return nil
		}, nil, i)
		require.True(t, tasks[i].Run(p))
	}
	for _, tk := range tasks {
		require.NoError(t, tk.Wait())
	}

	assert.Equal(t, int32(50), ran.Load())
	assert.Equal(t, 7, tasks[7].Data())
}

func TestPush_WhenPoolClosed_ShouldReturnFalse(t *testing.T) {
	p := NewPool(1, &shared{})
	p.Close()

	tk := New(func(context.Context, *Task[*shared], *shared) error { return nil }, nil, nil)

	assert.False(t, tk.Run(p))
	assert.ErrorIs(t, tk.RunWait(p), ErrPoolClosed)
	assert.False(t, tk.Done())
}

func TestClose_WhenTasksQueued_ShouldFailThemAndWakeWaiters(t *testing.T) {
	p := NewPool(1, &shared{})

	release := make(chan struct{})
	started := make(chan struct{})
	blocker := New(func(context.Context, *Task[*shared], *shared) error {
		close(started)
		<-release
		return nil
	}, nil, nil)
	require.True(t, blocker.Run(p))
	<-started

	var failed atomic.Int32
	queued := New(
		func(context.Context, *Task[*shared], *shared) error { return nil },
		func(st Status, _ *Task[*shared]) {
			if st == StatusFailed {
				failed.Add(1)
			}
		},
		nil,
	)
	require.True(t, queued.Run(p))
	assert.Equal(t, 1, p.Pending())

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	assert.ErrorIs(t, queued.Wait(), ErrPoolClosed)
	assert.Equal(t, int32(1), failed.Load())

	close(release)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not join workers")
	}
	assert.NoError(t, blocker.Err())
}

func TestClose_WhenCalledTwice_ShouldNotBlock(t *testing.T) {
	p := NewPool(2, &shared{})
	p.Close()
	p.Close()
}

// --- observer ---

func TestWithObserver_ShouldSeeEveryOutcome(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[Status]int{}
	)
	p := newTestPool(t, 2, WithObserver(func(st Status) {
		mu.Lock()
		seen[st]++
		mu.Unlock()
	}))

	ok := New(func(context.Context, *Task[*shared], *shared) error { return nil }, nil, nil)
	bad := New(func(context.Context, *Task[*shared], *shared) error { return errors.New("x") }, nil, nil)
	require.NoError(t, ok.RunWait(p))
	require.Error(t, bad.RunWait(p))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, seen[StatusComplete])
	assert.Equal(t, 1, seen[StatusFailed])
}

func TestNew_WhenExecNil_ShouldPanic(t *testing.T) {
	assert.Panics(t, func() { New[*shared](nil, nil, nil) })
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "complete", StatusComplete.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
