package store

import (
	"context"

	"github.com/anpopa/tkmviewer-sub000/internal/model"
)

// CPUStatEntries returns /proc/stat samples in r. Partial rows are kept.
func (s *Store) CPUStatEntries(ctx context.Context, r Range) ([]*model.CPUStatEntry, error) {
	return queryEntries(ctx, s, r.query("CpuStatGetAll", CPUStatTable, false),
		func(e *model.CPUStatEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			switch col {
			case "CPUStatName":
				e.Name = val
			case "CPUStatAll":
				e.All = parseInt(val)
			case "CPUStatSys":
				e.Sys = parseInt(val)
			case "CPUStatUsr":
				e.Usr = parseInt(val)
			}
		},
		func(e *model.CPUStatEntry, i int) { e.Index = i })
}

// MemInfoEntries returns /proc/meminfo samples in r.
func (s *Store) MemInfoEntries(ctx context.Context, r Range) ([]*model.MemInfoEntry, error) {
	return queryEntries(ctx, s, r.query("MemInfoGetAll", MemInfoTable, false),
		func(e *model.MemInfoEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			switch col {
			case "MemTotal":
				e.MemTotal = parseInt(val)
			case "MemFree":
				e.MemFree = parseInt(val)
			case "MemAvail":
				e.MemAvail = parseInt(val)
			case "MemCached":
				e.MemCached = parseInt(val)
			case "MemAvailPercent":
				e.MemPercent = parseInt(val)
			case "SwapTotal":
				e.SwapTotal = parseInt(val)
			case "SwapFree":
				e.SwapFree = parseInt(val)
			case "SwapCached":
				e.SwapCached = parseInt(val)
			case "SwapPercent":
				e.SwapPercent = parseInt(val)
			case "CmaTotal":
				e.CmaTotal = parseInt(val)
			case "CmaFree":
				e.CmaFree = parseInt(val)
			}
		},
		func(e *model.MemInfoEntry, i int) { e.Index = i })
}

func pressureLine(e *model.PressureEntry, resource, kind string) *model.PSI {
	switch resource + kind {
	case "CPUSome":
		return &e.CPUSome
	case "CPUFull":
		return &e.CPUFull
	case "MEMSome":
		return &e.MemSome
	case "MEMFull":
		return &e.MemFull
	case "IOSome":
		return &e.IOSome
	case "IOFull":
		return &e.IOFull
	}
	return nil
}

// setPressure decodes columns named <CPU|MEM|IO><Some|Full><Avg10|Avg60|Avg300|Total>.
func setPressure(e *model.PressureEntry, col, val string) {
	for _, resource := range [...]string{"CPU", "MEM", "IO"} {
		if len(col) <= len(resource) || col[:len(resource)] != resource {
			continue
		}
		rest := col[len(resource):]
		if len(rest) < 4 {
			return
		}
		line := pressureLine(e, resource, rest[:4])
		if line == nil {
			return
		}
		switch rest[4:] {
		case "Avg10":
			line.Avg10 = parseFloat(val)
		case "Avg60":
			line.Avg60 = parseFloat(val)
		case "Avg300":
			line.Avg300 = parseFloat(val)
		case "Total":
			line.Total = parseInt(val)
		}
		return
	}
}

// PressureEntries returns PSI samples in r.
func (s *Store) PressureEntries(ctx context.Context, r Range) ([]*model.PressureEntry, error) {
	return queryEntries(ctx, s, r.query("PressureGetAll", PressureTable, true),
		func(e *model.PressureEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			setPressure(e, col, val)
		},
		func(e *model.PressureEntry, i int) { e.Index = i })
}

// BuddyInfoEntries returns /proc/buddyinfo samples in r.
func (s *Store) BuddyInfoEntries(ctx context.Context, r Range) ([]*model.BuddyInfoEntry, error) {
	return queryEntries(ctx, s, r.query("BuddyInfoGetAll", BuddyInfoTable, false),
		func(e *model.BuddyInfoEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			switch col {
			case "Name":
				e.Name = val
			case "Zone":
				e.Zone = val
			case "Data":
				e.Data = val
			}
		},
		func(e *model.BuddyInfoEntry, i int) { e.Index = i })
}

// WirelessEntries returns /proc/net/wireless samples in r.
func (s *Store) WirelessEntries(ctx context.Context, r Range) ([]*model.WirelessEntry, error) {
	return queryEntries(ctx, s, r.query("WirelessGetAll", WirelessTable, false),
		func(e *model.WirelessEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			switch col {
			case "Name":
				e.Name = val
			case "Status":
				e.Status = val
			case "QualityLink":
				e.QualityLink = parseInt(val)
			case "QualityLevel":
				e.QualityLevel = parseInt(val)
			case "QualityNoise":
				e.QualityNoise = parseInt(val)
			case "DiscardedNWId":
				e.DiscardedNWID = parseInt(val)
			case "DiscardedCrypt":
				e.DiscardedCrypt = parseInt(val)
			case "DiscardedFrag":
				e.DiscardedFrag = parseInt(val)
			case "DiscardedMisc":
				e.DiscardedMisc = parseInt(val)
			case "MissedBeacon":
				e.MissedBeacon = parseInt(val)
			}
		},
		func(e *model.WirelessEntry, i int) { e.Index = i })
}

// DiskStatEntries returns /proc/diskstats samples in r.
func (s *Store) DiskStatEntries(ctx context.Context, r Range) ([]*model.DiskStatEntry, error) {
	return queryEntries(ctx, s, r.query("DiskStatGetAll", DiskStatTable, false),
		func(e *model.DiskStatEntry, col, val string) {
			if setTimestamp(&e.Timestamps, col, val) {
				return
			}
			switch col {
			case "Name":
				e.Name = val
			case "Major":
				e.Major = parseInt(val)
			case "Minor":
				e.Minor = parseInt(val)
			case "ReadsCompleted":
				e.ReadsCompleted = parseInt(val)
			case "ReadsMerged":
				e.ReadsMerged = parseInt(val)
			case "ReadsSpent":
				e.ReadsSpentMs = parseInt(val)
			case "WritesCompleted":
				e.WritesCompleted = parseInt(val)
			case "WritesMerged":
				e.WritesMerged = parseInt(val)
			case "WritesSpent":
				e.WritesSpentMs = parseInt(val)
			case "IOInProgress":
				e.IOInProgress = parseInt(val)
			case "IOSpent":
				e.IOSpentMs = parseInt(val)
			case "IOWeightedMs":
				e.IOWeightedMs = parseInt(val)
			}
		},
		func(e *model.DiskStatEntry, i int) { e.Index = i })
}
