package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- TimeSource ---

func TestParseTimeSource_WhenGivenKnownNames_ShouldResolve(t *testing.T) {
	cases := map[string]TimeSource{
		"system":    TimeSourceSystem,
		"SYSTEM":    TimeSourceSystem,
		"monotonic": TimeSourceMonotonic,
		"mono":      TimeSourceMonotonic,
		" receive ": TimeSourceReceive,
	}
	for in, want := range cases {
		got, err := ParseTimeSource(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseTimeSource_WhenGivenUnknownName_ShouldReturnError(t *testing.T) {
	_, err := ParseTimeSource("wallclock")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallclock")
}

func TestTimeSourceColumn_ShouldMatchCollectorColumns(t *testing.T) {
	assert.Equal(t, "SystemTime", TimeSourceSystem.Column())
	assert.Equal(t, "MonotonicTime", TimeSourceMonotonic.Column())
	assert.Equal(t, "ReceiveTime", TimeSourceReceive.Column())
}

func TestTimestamps_WhenSetPerSource_ShouldReturnSameValue(t *testing.T) {
	var ts Timestamps
	ts.Set(TimeSourceSystem, 1)
	ts.Set(TimeSourceMonotonic, 2)
	ts.Set(TimeSourceReceive, 3)

	assert.Equal(t, uint64(1), ts.Get(TimeSourceSystem))
	assert.Equal(t, uint64(2), ts.Get(TimeSourceMonotonic))
	assert.Equal(t, uint64(3), ts.Get(TimeSourceReceive))
}

// --- TimeInterval ---

func TestParseTimeInterval_WhenGivenFixedWidths_ShouldResolve(t *testing.T) {
	cases := map[string]TimeInterval{
		"10s":     Interval10S,
		"1m":      Interval1M,
		"60s":     Interval1M,
		"10m":     Interval10M,
		"1h":      Interval1H,
		"24h":     Interval24H,
		"1d":      Interval24H,
		"nolimit": IntervalNoLimit,
		"NoLimit": IntervalNoLimit,
	}
	for in, want := range cases {
		got, err := ParseTimeInterval(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseTimeInterval_WhenWidthIsNotSupported_ShouldReturnError(t *testing.T) {
	for _, in := range []string{"", "5m", "0s", "-1h", "h", "2w"} {
		_, err := ParseTimeInterval(in)
		assert.Error(t, err, in)
	}
}

func TestTimeIntervalString_ShouldRoundTripThroughParse(t *testing.T) {
	for _, iv := range []TimeInterval{Interval10S, Interval1M, Interval10M, Interval1H, Interval24H, IntervalNoLimit} {
		got, err := ParseTimeInterval(iv.String())
		require.NoError(t, err)
		assert.Equal(t, iv, got)
	}
}

// --- ResolveWindow ---

func TestResolveWindow_WhenLastUnknown_ShouldUseIntervalWidth(t *testing.T) {
	w := ResolveWindow(100, Interval1M, 0)
	assert.Equal(t, Window{Start: 100, End: 160}, w)
}

func TestResolveWindow_WhenIntervalExceedsSession_ShouldCapAtLastPlusOne(t *testing.T) {
	w := ResolveWindow(100, Interval1H, 150)
	assert.Equal(t, Window{Start: 100, End: 151}, w)
}

func TestResolveWindow_WhenIntervalFitsInsideSession_ShouldNotCap(t *testing.T) {
	w := ResolveWindow(100, Interval10S, 1000)
	assert.Equal(t, Window{Start: 100, End: 110}, w)
}

func TestResolveWindow_WhenNoLimitAndLastKnown_ShouldEndAfterLast(t *testing.T) {
	w := ResolveWindow(0, IntervalNoLimit, 500)
	assert.Equal(t, Window{Start: 0, End: 501}, w)
}

func TestResolveWindow_WhenNoLimitAndLastUnknown_ShouldBeUnbounded(t *testing.T) {
	w := ResolveWindow(42, IntervalNoLimit, 0)
	assert.Equal(t, int64(math.MaxInt64), w.End)
}

// --- Variant ---

func TestParseVariant_ShouldResolveEveryVariantName(t *testing.T) {
	for _, v := range Variants {
		got, ok := ParseVariant(v.String())
		require.True(t, ok, v.String())
		assert.Equal(t, v, got)
	}
	_, ok := ParseVariant("gpu")
	assert.False(t, ok)
}

func TestDataVariants_ShouldExcludeSessions(t *testing.T) {
	assert.Len(t, DataVariants, 10)
	assert.NotContains(t, DataVariants, VariantSession)
}
