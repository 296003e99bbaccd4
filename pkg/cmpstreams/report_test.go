package cmpstreams

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReportFormat(t *testing.T) {
	report := &Report{
		RunID:      "run-1",
		FirstName:  "A",
		SecondName: "B",
		Start:      base(),
		End:        base().Add(time.Minute),
		Duration:   time.Minute,
		Received:   [2]int64{100, 90},
		Matched:    80,
		Unmatched:  30,
		Dropped:    2,
		Mean:       3 * time.Millisecond,
		Median:     2 * time.Millisecond,
		Min:        -time.Millisecond,
		Max:        9 * time.Millisecond,
		Percentiles: map[int]time.Duration{
			50: 2 * time.Millisecond,
			90: 7 * time.Millisecond,
			95: 8 * time.Millisecond,
			99: 9 * time.Millisecond,
		},
		WonFirst:     60,
		WonSecond:    18,
		Tied:         2,
		FasterSource: SourceFirst,
		Advantage:    3 * time.Millisecond,
	}

	out := report.Format()

	for _, want := range []string{
		"Total events from A: 100",
		"Total events from B: 90",
		"Number of matched transactions: 80",
		"Number of unmatched transactions: 30",
		"P90: 7.000ms",
		"Verdict: A is faster",
	} {
		require.Contains(t, out, want)
	}
	require.NotContains(t, out, "degraded")
}

func TestReportFormatDegradedAndEmpty(t *testing.T) {
	report := &Report{
		FirstName:    "A",
		SecondName:   "B",
		NoData:       true,
		SourceFailed: [2]bool{false, true},
	}

	out := report.Format()
	require.Contains(t, out, "Stream B failed or went silent")
	require.Contains(t, out, "No data from either source")

	// One stream delivered but nothing matched.
	report.Received = [2]int64{5, 0}
	out = report.Format()
	require.Contains(t, out, "No matched transactions")
	require.NotContains(t, out, "No data from either source")

	require.Zero(t, report.WinRate())
}

func TestMillisecondsRendering(t *testing.T) {
	require.InDelta(t, 1.5, ms(1500*time.Microsecond), 0.0001)
	require.InDelta(t, -0.25, ms(-250*time.Microsecond), 0.0001)
	require.True(t, strings.HasPrefix(SourceFirst.String(), "f"))
}
