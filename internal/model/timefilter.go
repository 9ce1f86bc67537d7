package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimeSource selects which of the three recorded clocks drives time filtering.
type TimeSource int

const (
	TimeSourceSystem TimeSource = iota
	TimeSourceMonotonic
	TimeSourceReceive
)

// Column returns the table column holding readings for this clock.
func (s TimeSource) Column() string {
	switch s {
	case TimeSourceMonotonic:
		return "MonotonicTime"
	case TimeSourceReceive:
		return "ReceiveTime"
	default:
		return "SystemTime"
	}
}

func (s TimeSource) String() string {
	switch s {
	case TimeSourceSystem:
		return "system"
	case TimeSourceMonotonic:
		return "monotonic"
	case TimeSourceReceive:
		return "receive"
	default:
		return "unknown"
	}
}

// ParseTimeSource accepts "system", "monotonic" or "receive" (case-insensitive).
func ParseTimeSource(s string) (TimeSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system", "sys":
		return TimeSourceSystem, nil
	case "monotonic", "mono":
		return TimeSourceMonotonic, nil
	case "receive", "recv":
		return TimeSourceReceive, nil
	default:
		return 0, fmt.Errorf("invalid time source %q: expected system, monotonic or receive", s)
	}
}

// TimeInterval is the width of the data window loaded for a session.
type TimeInterval int

const (
	Interval10S TimeInterval = iota
	Interval1M
	Interval10M
	Interval1H
	Interval24H
	IntervalNoLimit
)

// Seconds returns the window width. ok is false for IntervalNoLimit.
func (i TimeInterval) Seconds() (n int64, ok bool) {
	switch i {
	case Interval10S:
		return 10, true
	case Interval1M:
		return 60, true
	case Interval10M:
		return 600, true
	case Interval1H:
		return 3600, true
	case Interval24H:
		return 86400, true
	default:
		return 0, false
	}
}

func (i TimeInterval) String() string {
	switch i {
	case Interval10S:
		return "10s"
	case Interval1M:
		return "1m"
	case Interval10M:
		return "10m"
	case Interval1H:
		return "1h"
	case Interval24H:
		return "24h"
	case IntervalNoLimit:
		return "nolimit"
	default:
		return "unknown"
	}
}

// ParseTimeInterval parses a window width. It accepts the fixed set
// 10s, 1m, 10m, 1h, 24h (also written as 1d) and "nolimit".
func ParseTimeInterval(s string) (TimeInterval, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "nolimit" || v == "none" || v == "all" {
		return IntervalNoLimit, nil
	}

	secs, ok := parseRelativeSeconds(v)
	if ok {
		switch secs {
		case 10:
			return Interval10S, nil
		case 60:
			return Interval1M, nil
		case 600:
			return Interval10M, nil
		case 3600:
			return Interval1H, nil
		case 86400:
			return Interval24H, nil
		}
	}

	return 0, fmt.Errorf("invalid time interval %q: expected 10s, 1m, 10m, 1h, 24h or nolimit", s)
}

// parseRelativeSeconds handles suffixes: s (seconds), m (minutes), h (hours), d (days).
func parseRelativeSeconds(s string) (int64, bool) {
	if len(s) < 2 {
		return 0, false
	}

	suffix := s[len(s)-1]
	n, err := strconv.ParseInt(strings.TrimSpace(s[:len(s)-1]), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}

	switch suffix {
	case 's':
		return n, true
	case 'm':
		return n * 60, true
	case 'h':
		return n * 3600, true
	case 'd':
		return n * 86400, true
	default:
		return 0, false
	}
}

// Window is a half-open time range [Start, End) on one clock source.
type Window struct {
	Start int64
	End   int64
}

// ResolveWindow computes the load window starting at start for the given
// interval. last is the session's final sample time on the active clock,
// or 0 when unknown. A known last timestamp caps the window; the cap is
// last+1 so the final sample stays inside the half-open range.
func ResolveWindow(start int64, interval TimeInterval, last uint64) Window {
	limit := int64(math.MaxInt64)
	if last > 0 && last < math.MaxInt64 {
		limit = int64(last) + 1
	}

	width, ok := interval.Seconds()
	if !ok || start > math.MaxInt64-width {
		return Window{Start: start, End: limit}
	}

	end := start + width
	if end > limit {
		end = limit
	}
	return Window{Start: start, End: end}
}
