// Package model defines the telemetry record types shared across the application.
//
// Every record is decoded from one row of a collector table and is never
// mutated after its decoder returns it. Collections of records are replaced
// wholesale, never edited in place.
package model

// Variant identifies one kind of telemetry record (and its source table).
type Variant int

const (
	VariantSession Variant = iota
	VariantProcInfo
	VariantCtxInfo
	VariantProcAcct
	VariantProcEvent
	VariantCPUStat
	VariantMemInfo
	VariantPressure
	VariantBuddyInfo
	VariantWireless
	VariantDiskStat
)

// Variants lists every record variant in load order.
var Variants = []Variant{
	VariantSession,
	VariantProcInfo,
	VariantCtxInfo,
	VariantProcAcct,
	VariantProcEvent,
	VariantCPUStat,
	VariantMemInfo,
	VariantPressure,
	VariantBuddyInfo,
	VariantWireless,
	VariantDiskStat,
}

// DataVariants lists the per-session variants loaded by a data load.
var DataVariants = Variants[1:]

var variantNames = [...]string{
	VariantSession:   "session",
	VariantProcInfo:  "procinfo",
	VariantCtxInfo:   "ctxinfo",
	VariantProcAcct:  "procacct",
	VariantProcEvent: "procevent",
	VariantCPUStat:   "cpustat",
	VariantMemInfo:   "meminfo",
	VariantPressure:  "pressure",
	VariantBuddyInfo: "buddyinfo",
	VariantWireless:  "wireless",
	VariantDiskStat:  "diskstat",
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return "unknown"
	}
	return variantNames[v]
}

// ParseVariant resolves a variant from its lowercase name.
func ParseVariant(s string) (Variant, bool) {
	for i, name := range variantNames {
		if name == s {
			return Variant(i), true
		}
	}
	return 0, false
}

// Timestamps holds the three clock readings the collector records per sample.
type Timestamps struct {
	System    uint64
	Monotonic uint64
	Receive   uint64
}

// Get returns the reading for the given clock source.
func (t Timestamps) Get(src TimeSource) uint64 {
	switch src {
	case TimeSourceSystem:
		return t.System
	case TimeSourceMonotonic:
		return t.Monotonic
	default:
		return t.Receive
	}
}

// Set stores the reading for the given clock source.
func (t *Timestamps) Set(src TimeSource, v uint64) {
	switch src {
	case TimeSourceSystem:
		t.System = v
	case TimeSourceMonotonic:
		t.Monotonic = v
	case TimeSourceReceive:
		t.Receive = v
	}
}

// SessionEntry is one recorded monitoring run.
type SessionEntry struct {
	Index     int
	ID        int64
	Hash      string
	Name      string
	DeviceID  int64
	Device    string
	CoreCount int64

	// First and Last bound the session's CpuStat samples per clock source.
	First Timestamps
	Last  Timestamps

	Active bool
}

// FirstTimestamp returns the earliest sample time for the clock source.
func (e *SessionEntry) FirstTimestamp(src TimeSource) uint64 { return e.First.Get(src) }

// LastTimestamp returns the latest sample time for the clock source.
func (e *SessionEntry) LastTimestamp(src TimeSource) uint64 { return e.Last.Get(src) }

// ProcInfoEntry is a per-process resource sample.
type ProcInfoEntry struct {
	Index int
	Timestamps

	Name       string
	Context    string
	PID        int64
	PPID       int64
	CPUTime    int64
	CPUPercent int64
	VmRSS      int64
}

// CtxInfoEntry aggregates resource usage per execution context (container).
type CtxInfoEntry struct {
	Index int
	Timestamps

	ID         string
	Name       string
	CPUTime    int64
	CPUPercent int64
	MemRSS     int64
	MemPSS     int64
}

// ProcAcctEntry is a taskstats process accounting sample.
type ProcAcctEntry struct {
	Index int
	Timestamps

	Name string
	PID  int64
	PPID int64
	UID  int64
	GID  int64

	UTime int64
	STime int64

	CPUCount      int64
	CPURunReal    int64
	CPURunVirtual int64
	CPUDelayTotal int64
	CPUDelayAvg   int64

	CoreMem      int64
	VirtMem      int64
	HighWaterRSS int64
	HighWaterVM  int64

	Nvcsw  int64
	Nivcsw int64

	SwapinCount      int64
	SwapinDelayTotal int64
	SwapinDelayAvg   int64

	BlkIOCount      int64
	BlkIODelayTotal int64
	BlkIODelayAvg   int64

	IOStorageRead   int64
	IOStorageWrite  int64
	IOReadChar      int64
	IOWriteChar     int64
	IOReadSyscalls  int64
	IOWriteSyscalls int64

	FreePagesCount      int64
	FreePagesDelayTotal int64
	FreePagesDelayAvg   int64

	ThrashingCount      int64
	ThrashingDelayTotal int64
	ThrashingDelayAvg   int64
}

// ProcEventEntry counts process lifecycle events over one sample period.
type ProcEventEntry struct {
	Index int
	Timestamps

	Forks int64
	Execs int64
	Exits int64
	UIDs  int64
	GIDs  int64
}

// CPUStatEntry is a /proc/stat sample for one CPU line ("cpu", "cpu0", ...).
type CPUStatEntry struct {
	Index int
	Timestamps

	Name string
	All  int64
	Sys  int64
	Usr  int64
}

// MemInfoEntry is a /proc/meminfo sample.
type MemInfoEntry struct {
	Index int
	Timestamps

	MemTotal    int64
	MemFree     int64
	MemAvail    int64
	MemCached   int64
	MemPercent  int64
	SwapTotal   int64
	SwapFree    int64
	SwapCached  int64
	SwapPercent int64
	CmaTotal    int64
	CmaFree     int64
}

// PSI is one pressure stall line (some or full).
type PSI struct {
	Avg10  float64
	Avg60  float64
	Avg300 float64
	Total  int64
}

// PressureEntry is a /proc/pressure sample for cpu, memory and io.
type PressureEntry struct {
	Index int
	Timestamps

	CPUSome PSI
	CPUFull PSI
	MemSome PSI
	MemFull PSI
	IOSome  PSI
	IOFull  PSI
}

// BuddyInfoEntry is a /proc/buddyinfo line; Data keeps the raw order counts.
type BuddyInfoEntry struct {
	Index int
	Timestamps

	Name string
	Zone string
	Data string
}

// WirelessEntry is a /proc/net/wireless sample for one interface.
type WirelessEntry struct {
	Index int
	Timestamps

	Name           string
	Status         string
	QualityLink    int64
	QualityLevel   int64
	QualityNoise   int64
	DiscardedNWID  int64
	DiscardedCrypt int64
	DiscardedFrag  int64
	DiscardedMisc  int64
	MissedBeacon   int64
}

// DiskStatEntry is a /proc/diskstats sample for one block device.
type DiskStatEntry struct {
	Index int
	Timestamps

	Name            string
	Major           int64
	Minor           int64
	ReadsCompleted  int64
	ReadsMerged     int64
	ReadsSpentMs    int64
	WritesCompleted int64
	WritesMerged    int64
	WritesSpentMs   int64
	IOInProgress    int64
	IOSpentMs       int64
	IOWeightedMs    int64
}
