package summary

import (
	"context"
	"errors"

	"github.com/anpopa/tkmviewer-sub000/internal/entrypool"
	"github.com/anpopa/tkmviewer-sub000/internal/tkm"
)

// Build computes the report for snap, one task per section on c's task
// pool. Each task writes a distinct Report field.
func Build(c *tkm.Context, snap entrypool.Snapshot, topN int) (*Report, error) {
	r := &Report{
		Session: snap.ActiveSession(),
		Counts:  Counts(&snap),
	}

	sections := []func(){
		func() { r.CPU = SummarizeCPU(snap.CPUStat) },
		func() { r.Memory = SummarizeMemory(snap.MemInfo) },
		func() { r.Pressure = SummarizePressure(snap.Pressure) },
		func() { r.TopProcesses = TopProcesses(snap.ProcInfo, topN) },
		func() { r.Disks = SummarizeDisks(snap.DiskStat) },
		func() { r.Events = SummarizeEvents(snap.ProcEvent) },
	}

	tasks := make([]*tkm.Task, 0, len(sections))
	var errs []error
	for _, fn := range sections {
		t := tkm.NewTask(func(context.Context, *tkm.Task, *tkm.Context) error {
			fn()
			return nil
		}, nil, nil)
		if err := c.RunTask(t, false); err != nil {
			errs = append(errs, err)
			continue
		}
		tasks = append(tasks, t)
	}
	for _, t := range tasks {
		if err := t.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}
