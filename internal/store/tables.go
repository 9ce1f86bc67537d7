package store

// Collector table names.
const (
	SessionsTable  = "tkmSessions"
	DevicesTable   = "tkmDevices"
	ProcEventTable = "tkmProcEvent"
	CPUStatTable   = "tkmSysProcStat"
	MemInfoTable   = "tkmSysProcMemInfo"
	PressureTable  = "tkmSysProcPressure"
	BuddyInfoTable = "tkmSysProcBuddyInfo"
	WirelessTable  = "tkmSysProcWireless"
	DiskStatTable  = "tkmSysProcDiskStats"
	ProcInfoTable  = "tkmProcInfo"
	ProcAcctTable  = "tkmProcAcct"
	CtxInfoTable   = "tkmContextInfo"
)

const sessionsQuery = `SELECT * FROM '` + SessionsTable + `'`

// sessionBoundsQuery takes the session hash; the bounds come from the
// session's CpuStat samples.
const sessionBoundsQuery = `
SELECT
    MIN(SystemTime)    AS MinSysTime,
    MIN(MonotonicTime) AS MinMonTime,
    MIN(ReceiveTime)   AS MinRecTime,
    MAX(SystemTime)    AS MaxSysTime,
    MAX(MonotonicTime) AS MaxMonTime,
    MAX(ReceiveTime)   AS MaxRecTime
FROM '` + CPUStatTable + `'
WHERE SessionId IS (SELECT Id FROM '` + SessionsTable + `' WHERE Hash IS ? LIMIT 1)`

const sessionDeviceQuery = `
SELECT d.Name
FROM '` + DevicesTable + `' d
JOIN '` + SessionsTable + `' s ON s.Device = d.Id
WHERE s.Hash IS ?
LIMIT 1`
