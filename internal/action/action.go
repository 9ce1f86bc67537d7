// Package action describes operations submitted to the data pool.
package action

import (
	"github.com/google/uuid"
)

// Kind names the requested operation.
type Kind int

const (
	KindOpenDatabaseFile Kind = iota
	KindLoadSessions
	KindLoadData
	KindTerminate
)

var kindNames = [...]string{
	KindOpenDatabaseFile: "open_database_file",
	KindLoadSessions:     "load_sessions",
	KindLoadData:         "load_data",
	KindTerminate:        "terminate",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Status is reported to the action's callback.
type Status int

const (
	StatusProgress Status = iota
	StatusFailed
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusProgress:
		return "progress"
	case StatusFailed:
		return "failed"
	case StatusComplete:
		return "complete"
	}
	return "unknown"
}

// Callback receives the outcome of an action. err is set when status is
// StatusFailed.
type Callback func(a *Action, status Status, err error)

// Action is a request plus its positional arguments. It is not modified
// after New returns.
type Action struct {
	id       string
	kind     Kind
	args     []string
	callback Callback
	userData any
}

// New builds an action. args is kept as given, not copied; callers must
// not modify it afterwards.
func New(kind Kind, args []string, cb Callback, userData any) *Action {
	return &Action{
		id:       uuid.NewString(),
		kind:     kind,
		args:     args,
		callback: cb,
		userData: userData,
	}
}

// NewOpenDatabaseFile requests opening the database at path.
func NewOpenDatabaseFile(path string, cb Callback) *Action {
	return New(KindOpenDatabaseFile, []string{path}, cb, nil)
}

// NewLoadSessions requests a reload of the session list.
func NewLoadSessions(cb Callback) *Action {
	return New(KindLoadSessions, nil, cb, nil)
}

// NewLoadData requests every data collection for the session with hash,
// starting at start and spanning the configured interval.
func NewLoadData(hash, start string, cb Callback) *Action {
	return New(KindLoadData, []string{hash, start}, cb, nil)
}

// NewLoadDataRange is NewLoadData with an explicit exclusive end.
func NewLoadDataRange(hash, start, end string, cb Callback) *Action {
	return New(KindLoadData, []string{hash, start, end}, cb, nil)
}

// NewTerminate requests a shutdown of the data pool.
func NewTerminate(cb Callback) *Action {
	return New(KindTerminate, nil, cb, nil)
}

// ID is a unique identifier for log correlation.
func (a *Action) ID() string { return a.must().id }

func (a *Action) Kind() Kind { return a.must().kind }

// Args returns a copy of the positional arguments.
func (a *Action) Args() []string {
	a.must()
	if a.args == nil {
		return nil
	}
	out := make([]string, len(a.args))
	copy(out, a.args)
	return out
}

// Arg returns argument i, or "" and false when out of range.
func (a *Action) Arg(i int) (string, bool) {
	a.must()
	if i < 0 || i >= len(a.args) {
		return "", false
	}
	return a.args[i], true
}

// NArgs returns the number of positional arguments.
func (a *Action) NArgs() int { return len(a.must().args) }

func (a *Action) Callback() Callback { return a.must().callback }

func (a *Action) UserData() any { return a.must().userData }

// Notify invokes the callback, if any.
func (a *Action) Notify(status Status, err error) {
	if cb := a.must().callback; cb != nil {
		cb(a, status, err)
	}
}

func (a *Action) must() *Action {
	if a == nil {
		panic("action: nil *Action")
	}
	return a
}
