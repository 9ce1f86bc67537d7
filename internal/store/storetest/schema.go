package storetest

// schema mirrors the tables written by the collector. Value columns carry
// no declared type so tests can store text, numbers or NULL freely.
const schema = `
CREATE TABLE tkmDevices (
    Id   INTEGER PRIMARY KEY,
    Hash,
    Name
);

CREATE TABLE tkmSessions (
    Id        INTEGER PRIMARY KEY,
    Hash,
    Name,
    CoreCount,
    Device
);

CREATE TABLE tkmSysProcStat (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    CPUStatName, CPUStatAll, CPUStatUsr, CPUStatSys
);

CREATE TABLE tkmSysProcMemInfo (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    MemTotal, MemFree, MemAvail, MemCached, MemAvailPercent,
    SwapTotal, SwapFree, SwapCached, SwapPercent, CmaTotal, CmaFree
);

CREATE TABLE tkmSysProcPressure (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    CPUSomeAvg10, CPUSomeAvg60, CPUSomeAvg300, CPUSomeTotal,
    CPUFullAvg10, CPUFullAvg60, CPUFullAvg300, CPUFullTotal,
    MEMSomeAvg10, MEMSomeAvg60, MEMSomeAvg300, MEMSomeTotal,
    MEMFullAvg10, MEMFullAvg60, MEMFullAvg300, MEMFullTotal,
    IOSomeAvg10, IOSomeAvg60, IOSomeAvg300, IOSomeTotal,
    IOFullAvg10, IOFullAvg60, IOFullAvg300, IOFullTotal
);

CREATE TABLE tkmSysProcBuddyInfo (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    Name, Zone, Data
);

CREATE TABLE tkmSysProcWireless (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    Name, Status, QualityLink, QualityLevel, QualityNoise,
    DiscardedNWId, DiscardedCrypt, DiscardedFrag, DiscardedMisc, MissedBeacon
);

CREATE TABLE tkmSysProcDiskStats (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    Name, Major, Minor, ReadsCompleted, ReadsMerged, ReadsSpent,
    WritesCompleted, WritesMerged, WritesSpent, IOInProgress, IOSpent, IOWeightedMs
);

CREATE TABLE tkmProcEvent (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    ForkCount, ExecCount, ExitCount, UIdCount, GIdCount
);

CREATE TABLE tkmProcInfo (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    Comm, PID, PPID, ContextName, CpuTime, CpuPercent, VmRSS
);

CREATE TABLE tkmContextInfo (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    ContextId, ContextName, TotalCpuTime, TotalCpuPercent, TotalMemRSS, TotalMemPSS
);

CREATE TABLE tkmProcAcct (
    Id INTEGER PRIMARY KEY, SessionId, SystemTime, MonotonicTime, ReceiveTime,
    AcComm, AcUid, AcGid, AcPid, AcPPid, AcUTime, AcSTime,
    CpuCount, CpuRunRealTotal, CpuRunVirtualTotal, CpuDelayTotal, CpuDelayAverage,
    CoreMem, VirtMem, HiwaterRss, HiwaterVm, Nvcsw, Nivcsw,
    SwapinCount, SwapinDelayTotal, SwapinDelayAverage,
    BlkIOCount, BlkIODelayTotal, BlkIODelayAverage,
    IOStorageReadBytes, IOStorageWriteBytes, IOReadChar, IOWriteChar,
    IOReadSyscalls, IOWriteSyscalls,
    FreePagesCount, FreePagesDelayTotal, FreePagesDelayAverage,
    ThrashingCount, ThrashingDelayTotal, ThrashingDelayAverage
);
`
