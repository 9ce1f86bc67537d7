package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ShouldKeepFieldsAndAssignID(t *testing.T) {
	a := New(KindLoadData, []string{"abc", "100"}, nil, "ud")
	b := New(KindLoadData, nil, nil, nil)

	assert.Equal(t, KindLoadData, a.Kind())
	assert.Equal(t, []string{"abc", "100"}, a.Args())
	assert.Equal(t, "ud", a.UserData())
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestArgs_ShouldReturnCopy(t *testing.T) {
	a := New(KindOpenDatabaseFile, []string{"/tmp/x.db"}, nil, nil)

	got := a.Args()
	got[0] = "changed"

	v, ok := a.Arg(0)
	require.True(t, ok)
	assert.Equal(t, "/tmp/x.db", v)
}

func TestArg_WhenOutOfRange_ShouldReportMissing(t *testing.T) {
	a := NewLoadSessions(nil)

	_, ok := a.Arg(0)
	assert.False(t, ok)
	_, ok = a.Arg(-1)
	assert.False(t, ok)
	assert.Zero(t, a.NArgs())
	assert.Nil(t, a.Args())
}

func TestTypedConstructors_ShouldSetKindAndArgs(t *testing.T) {
	assert.Equal(t, []string{"/db"}, NewOpenDatabaseFile("/db", nil).Args())
	assert.Equal(t, KindLoadSessions, NewLoadSessions(nil).Kind())

	ld := NewLoadData("h", "10", nil)
	assert.Equal(t, KindLoadData, ld.Kind())
	assert.Equal(t, []string{"h", "10"}, ld.Args())

	assert.Equal(t, []string{"h", "10", "20"}, NewLoadDataRange("h", "10", "20", nil).Args())
	assert.Equal(t, KindTerminate, NewTerminate(nil).Kind())
}

func TestNotify_ShouldInvokeCallbackWithSelf(t *testing.T) {
	var (
		got       *Action
		gotStatus Status
		gotErr    error
	)
	a := NewLoadSessions(func(a *Action, s Status, err error) {
		got, gotStatus, gotErr = a, s, err
	})
	boom := errors.New("boom")

	a.Notify(StatusFailed, boom)

	assert.Same(t, a, got)
	assert.Equal(t, StatusFailed, gotStatus)
	assert.ErrorIs(t, gotErr, boom)
}

func TestNotify_WhenNoCallback_ShouldNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { NewTerminate(nil).Notify(StatusComplete, nil) })
}

func TestAccessors_WhenNilAction_ShouldPanic(t *testing.T) {
	var a *Action
	assert.Panics(t, func() { a.Kind() })
	assert.Panics(t, func() { a.Args() })
	assert.Panics(t, func() { a.Notify(StatusComplete, nil) })
}

func TestKindAndStatus_String(t *testing.T) {
	assert.Equal(t, "load_data", KindLoadData.String())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, "progress", StatusProgress.String())
	assert.Equal(t, "complete", StatusComplete.String())
	assert.Equal(t, "unknown", Status(9).String())
}
