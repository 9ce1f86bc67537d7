// Package summary aggregates a loaded data window into a short report.
package summary

import (
	"sort"

	"github.com/anpopa/tkmviewer-sub000/internal/entrypool"
	"github.com/anpopa/tkmviewer-sub000/internal/model"
)

// cpuLine is the /proc/stat line aggregating every core.
const cpuLine = "cpu"

// Stats summarizes one integer series.
type Stats struct {
	Count int
	Min   int64
	Max   int64
	Avg   float64
}

func statsOf(vals []int64) Stats {
	if len(vals) == 0 {
		return Stats{}
	}
	s := Stats{Count: len(vals), Min: vals[0], Max: vals[0]}
	var sum float64
	for _, v := range vals {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += float64(v)
	}
	s.Avg = sum / float64(len(vals))
	return s
}

// CPU covers the aggregate "cpu" line only.
type CPU struct {
	All Stats
	Sys Stats
	Usr Stats
}

type Memory struct {
	AvailPercent Stats
	SwapPercent  Stats
}

// Pressure holds the highest 10s "some" stall average per resource.
type Pressure struct {
	Samples int
	CPU     float64
	Memory  float64
	IO      float64
}

type Process struct {
	Name       string
	PID        int64
	Context    string
	CPUPercent int64
	VmRSS      int64
}

// Disk holds counter deltas across the window for one device.
type Disk struct {
	Name    string
	Reads   int64
	Writes  int64
	IOMs    int64
	Samples int
}

type Events struct {
	Forks int64
	Execs int64
	Exits int64
}

// Report is the full summary of one loaded window.
type Report struct {
	Session      *model.SessionEntry
	Counts       map[model.Variant]int
	CPU          CPU
	Memory       Memory
	Pressure     Pressure
	TopProcesses []Process
	Disks        []Disk
	Events       Events
}

// Counts returns the size of every loaded collection.
func Counts(s *entrypool.Snapshot) map[model.Variant]int {
	out := make(map[model.Variant]int, len(model.Variants))
	for _, v := range model.Variants {
		if n, ok := s.Count(v); ok {
			out[v] = n
		}
	}
	return out
}

func SummarizeCPU(entries []*model.CPUStatEntry) CPU {
	var all, sys, usr []int64
	for _, e := range entries {
		if e.Name != cpuLine {
			continue
		}
		all = append(all, e.All)
		sys = append(sys, e.Sys)
		usr = append(usr, e.Usr)
	}
	return CPU{All: statsOf(all), Sys: statsOf(sys), Usr: statsOf(usr)}
}

func SummarizeMemory(entries []*model.MemInfoEntry) Memory {
	avail := make([]int64, 0, len(entries))
	swap := make([]int64, 0, len(entries))
	for _, e := range entries {
		avail = append(avail, e.MemPercent)
		swap = append(swap, e.SwapPercent)
	}
	return Memory{AvailPercent: statsOf(avail), SwapPercent: statsOf(swap)}
}

func SummarizePressure(entries []*model.PressureEntry) Pressure {
	p := Pressure{Samples: len(entries)}
	for _, e := range entries {
		p.CPU = max(p.CPU, e.CPUSome.Avg10)
		p.Memory = max(p.Memory, e.MemSome.Avg10)
		p.IO = max(p.IO, e.IOSome.Avg10)
	}
	return p
}

// TopProcesses returns up to n processes ordered by their peak CPU percent.
// Ties are broken by PID.
func TopProcesses(entries []*model.ProcInfoEntry, n int) []Process {
	type key struct {
		name string
		pid  int64
	}
	peak := make(map[key]Process)
	for _, e := range entries {
		k := key{e.Name, e.PID}
		cur, ok := peak[k]
		if !ok || e.CPUPercent > cur.CPUPercent {
			peak[k] = Process{Name: e.Name, PID: e.PID, Context: e.Context, CPUPercent: e.CPUPercent, VmRSS: e.VmRSS}
		}
	}

	out := make([]Process, 0, len(peak))
	for _, p := range peak {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CPUPercent != out[j].CPUPercent {
			return out[i].CPUPercent > out[j].CPUPercent
		}
		return out[i].PID < out[j].PID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SummarizeDisks returns per-device deltas, sorted by name. A counter that
// went backwards (device reset) reports its last value.
func SummarizeDisks(entries []*model.DiskStatEntry) []Disk {
	first := make(map[string]*model.DiskStatEntry)
	last := make(map[string]*model.DiskStatEntry)
	samples := make(map[string]int)
	for _, e := range entries {
		if _, ok := first[e.Name]; !ok {
			first[e.Name] = e
		}
		last[e.Name] = e
		samples[e.Name]++
	}

	delta := func(a, b int64) int64 {
		if b < a {
			return b
		}
		return b - a
	}

	out := make([]Disk, 0, len(first))
	for name, f := range first {
		l := last[name]
		out = append(out, Disk{
			Name:    name,
			Reads:   delta(f.ReadsCompleted, l.ReadsCompleted),
			Writes:  delta(f.WritesCompleted, l.WritesCompleted),
			IOMs:    delta(f.IOSpentMs, l.IOSpentMs),
			Samples: samples[name],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func SummarizeEvents(entries []*model.ProcEventEntry) Events {
	var ev Events
	for _, e := range entries {
		ev.Forks += e.Forks
		ev.Execs += e.Execs
		ev.Exits += e.Exits
	}
	return ev
}
