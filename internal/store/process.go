package store

import (
	"context"

	"github.com/anpopa/tkmviewer-sub000/internal/model"
)

// Range scopes a decoder query to one session and a half-open window
// [Start, End) over the chosen clock column.
type Range struct {
	Hash   string
	Source model.TimeSource
	Start  int64
	End    int64
}

func (r Range) query(op, table string, complete bool) entryQuery {
	return entryQuery{
		op:       op,
		table:    table,
		source:   r.Source,
		hash:     r.Hash,
		start:    r.Start,
		end:      r.End,
		complete: complete,
	}
}

// ProcInfoEntries returns per-process samples in r.
func (s *Store) ProcInfoEntries(ctx context.Context, r Range) ([]*model.ProcInfoEntry, error) {
	return queryEntries(ctx, s, r.query("ProcInfoGetAll", ProcInfoTable, true),
		func(e *model.ProcInfoEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			switch col {
			case "Comm":
				e.Name = val
			case "PID":
				e.PID = parseInt(val)
			case "PPID":
				e.PPID = parseInt(val)
			case "ContextName":
				e.Context = val
			case "CpuTime":
				e.CPUTime = parseInt(val)
			case "CpuPercent":
				e.CPUPercent = parseInt(val)
			case "VmRSS":
				e.VmRSS = parseInt(val)
			}
		},
		func(e *model.ProcInfoEntry, i int) { e.Index = i })
}

// CtxInfoEntries returns per-context aggregates in r.
func (s *Store) CtxInfoEntries(ctx context.Context, r Range) ([]*model.CtxInfoEntry, error) {
	return queryEntries(ctx, s, r.query("CtxInfoGetAll", CtxInfoTable, true),
		func(e *model.CtxInfoEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			switch col {
			case "ContextId":
				e.ID = val
			case "ContextName":
				e.Name = val
			case "TotalCpuTime":
				e.CPUTime = parseInt(val)
			case "TotalCpuPercent":
				e.CPUPercent = parseInt(val)
			case "TotalMemRSS":
				e.MemRSS = parseInt(val)
			case "TotalMemPSS":
				e.MemPSS = parseInt(val)
			}
		},
		func(e *model.CtxInfoEntry, i int) { e.Index = i })
}

// procAcctFields maps taskstats columns onto entry fields.
var procAcctFields = map[string]func(e *model.ProcAcctEntry) *int64{
	"AcPid":                 func(e *model.ProcAcctEntry) *int64 { return &e.PID },
	"AcPPid":                func(e *model.ProcAcctEntry) *int64 { return &e.PPID },
	"AcUid":                 func(e *model.ProcAcctEntry) *int64 { return &e.UID },
	"AcGid":                 func(e *model.ProcAcctEntry) *int64 { return &e.GID },
	"AcUTime":               func(e *model.ProcAcctEntry) *int64 { return &e.UTime },
	"AcSTime":               func(e *model.ProcAcctEntry) *int64 { return &e.STime },
	"CpuCount":              func(e *model.ProcAcctEntry) *int64 { return &e.CPUCount },
	"CpuRunRealTotal":       func(e *model.ProcAcctEntry) *int64 { return &e.CPURunReal },
	"CpuRunVirtualTotal":    func(e *model.ProcAcctEntry) *int64 { return &e.CPURunVirtual },
	"CpuDelayTotal":         func(e *model.ProcAcctEntry) *int64 { return &e.CPUDelayTotal },
	"CpuDelayAverage":       func(e *model.ProcAcctEntry) *int64 { return &e.CPUDelayAvg },
	"CoreMem":               func(e *model.ProcAcctEntry) *int64 { return &e.CoreMem },
	"VirtMem":               func(e *model.ProcAcctEntry) *int64 { return &e.VirtMem },
	"HiwaterRss":            func(e *model.ProcAcctEntry) *int64 { return &e.HighWaterRSS },
	"HiwaterVm":             func(e *model.ProcAcctEntry) *int64 { return &e.HighWaterVM },
	"Nvcsw":                 func(e *model.ProcAcctEntry) *int64 { return &e.Nvcsw },
	"Nivcsw":                func(e *model.ProcAcctEntry) *int64 { return &e.Nivcsw },
	"SwapinCount":           func(e *model.ProcAcctEntry) *int64 { return &e.SwapinCount },
	"SwapinDelayTotal":      func(e *model.ProcAcctEntry) *int64 { return &e.SwapinDelayTotal },
	"SwapinDelayAverage":    func(e *model.ProcAcctEntry) *int64 { return &e.SwapinDelayAvg },
	"BlkIOCount":            func(e *model.ProcAcctEntry) *int64 { return &e.BlkIOCount },
	"BlkIODelayTotal":       func(e *model.ProcAcctEntry) *int64 { return &e.BlkIODelayTotal },
	"BlkIODelayAverage":     func(e *model.ProcAcctEntry) *int64 { return &e.BlkIODelayAvg },
	"IOStorageReadBytes":    func(e *model.ProcAcctEntry) *int64 { return &e.IOStorageRead },
	"IOStorageWriteBytes":   func(e *model.ProcAcctEntry) *int64 { return &e.IOStorageWrite },
	"IOReadChar":            func(e *model.ProcAcctEntry) *int64 { return &e.IOReadChar },
	"IOWriteChar":           func(e *model.ProcAcctEntry) *int64 { return &e.IOWriteChar },
	"IOReadSyscalls":        func(e *model.ProcAcctEntry) *int64 { return &e.IOReadSyscalls },
	"IOWriteSyscalls":       func(e *model.ProcAcctEntry) *int64 { return &e.IOWriteSyscalls },
	"FreePagesCount":        func(e *model.ProcAcctEntry) *int64 { return &e.FreePagesCount },
	"FreePagesDelayTotal":   func(e *model.ProcAcctEntry) *int64 { return &e.FreePagesDelayTotal },
	"FreePagesDelayAverage": func(e *model.ProcAcctEntry) *int64 { return &e.FreePagesDelayAvg },
	"ThrashingCount":        func(e *model.ProcAcctEntry) *int64 { return &e.ThrashingCount },
	"ThrashingDelayTotal":   func(e *model.ProcAcctEntry) *int64 { return &e.ThrashingDelayTotal },
	"ThrashingDelayAverage": func(e *model.ProcAcctEntry) *int64 { return &e.ThrashingDelayAvg },
}

// ProcAcctEntries returns process accounting samples in r. Partial rows are
// kept.
func (s *Store) ProcAcctEntries(ctx context.Context, r Range) ([]*model.ProcAcctEntry, error) {
	return queryEntries(ctx, s, r.query("ProcAcctGetAll", ProcAcctTable, false),
		func(e *model.ProcAcctEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			if col == "AcComm" {
				e.Name = val
				return
			}
			if field, ok := procAcctFields[col]; ok {
				*field(e) = parseInt(val)
			}
		},
		func(e *model.ProcAcctEntry, i int) { e.Index = i })
}

// ProcEventEntries returns process lifecycle counters in r.
func (s *Store) ProcEventEntries(ctx context.Context, r Range) ([]*model.ProcEventEntry, error) {
	return queryEntries(ctx, s, r.query("ProcEventGetAll", ProcEventTable, true),
		func(e *model.ProcEventEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			switch col {
			case "ForkCount":
				e.Forks = parseInt(val)
			case "ExecCount":
				e.Execs = parseInt(val)
			case "ExitCount":
				e.Exits = parseInt(val)
			case "UIdCount":
				e.UIDs = parseInt(val)
			case "GIdCount":
				e.GIDs = parseInt(val)
			}
		},
		func(e *model.ProcEventEntry, i int) { e.Index = i })
}
