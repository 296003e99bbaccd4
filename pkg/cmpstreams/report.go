package cmpstreams

import (
	"fmt"
	"strings"
	"time"
)

// Report is the frozen result of a single benchmark run.
type Report struct {
	RunID      string
	FirstName  string
	SecondName string

	Start    time.Time
	End      time.Time
	Duration time.Duration

	Received     [2]int64
	// Rate is distinct signatures observed per second over the run.
	Rate         float64
	Matched      int
	Unmatched    int
	Dropped      int64
	LateDropped  int64
	SourceFailed [2]bool

	// Signed statistics over the delta samples: positive values mean the
	// first stream was earlier.
	Mean        time.Duration
	Median      time.Duration
	Min         time.Duration
	Max         time.Duration
	Percentiles map[int]time.Duration

	WonFirst  int
	WonSecond int
	Tied      int

	FasterSource SourceID
	Advantage    time.Duration
	NoData       bool
}

// WinRate returns the percentage of matches won by the faster source.
func (r *Report) WinRate() float64 {
	if r.Matched == 0 {
		return 0
	}

	wins := r.WonFirst
	if r.FasterSource == SourceSecond {
		wins = r.WonSecond
	}

	return float64(wins) / float64(r.Matched) * 100
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// Format renders the report the way the interval summaries are printed.
func (r *Report) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "-----------------------------------------------------\n")
	fmt.Fprintf(&b, "Benchmark run %s\n", r.RunID)
	fmt.Fprintf(&b, "Duration: %s (from %s to %s)\n",
		r.Duration.Round(time.Millisecond),
		r.Start.Format("2006-01-02T15:04:05.000"),
		r.End.Format("2006-01-02T15:04:05.000"))

	fmt.Fprintf(&b,
		"\nTotal events summary:\n"+
			"Total events from %s: %d\n"+
			"Total events from %s: %d\n"+
			"Number of undecodable events ignored: %d\n"+
			"Number of late events ignored: %d\n",
		r.FirstName, r.Received[SourceFirst],
		r.SecondName, r.Received[SourceSecond],
		r.Dropped,
		r.LateDropped)

	for _, src := range []SourceID{SourceFirst, SourceSecond} {
		if r.SourceFailed[src] {
			fmt.Fprintf(&b, "Stream %s failed or went silent during the run; results are degraded\n", r.sourceName(src))
		}
	}

	if r.Received[SourceFirst] == 0 && r.Received[SourceSecond] == 0 {
		fmt.Fprintf(&b, "\nNo data from either source\n")
		return b.String()
	}

	fmt.Fprintf(&b,
		"\nAnalysis of transactions seen on both streams:\n"+
			"Number of matched transactions: %d\n"+
			"Number of unmatched transactions: %d\n"+
			"Number of transactions received from %s first: %d\n"+
			"Number of transactions received from %s first: %d\n"+
			"Number of ties: %d\n"+
			"Distinct signatures per second: %.1f\n",
		r.Matched,
		r.Unmatched,
		r.FirstName, r.WonFirst,
		r.SecondName, r.WonSecond,
		r.Tied,
		r.Rate)

	if r.NoData {
		fmt.Fprintf(&b, "No matched transactions, latency statistics unavailable\n")
		return b.String()
	}

	fmt.Fprintf(&b,
		"\nLatency deltas, positive means %s was earlier (ms):\n"+
			"Mean: %.3f\n"+
			"Median: %.3f\n"+
			"Min: %.3f\n"+
			"Max: %.3f\n",
		r.FirstName,
		ms(r.Mean),
		ms(r.Median),
		ms(r.Min),
		ms(r.Max))

	for _, p := range reportPercentiles {
		fmt.Fprintf(&b, "P%d: %.3fms\n", p, ms(r.Percentiles[p]))
	}

	switch r.FasterSource {
	case SourceNone:
		fmt.Fprintf(&b, "\nVerdict: tied, neither stream won more matches\n")
	default:
		fmt.Fprintf(&b, "\nVerdict: %s is faster, winning %.1f%% of matches with a mean advantage of %.3fms\n",
			r.sourceName(r.FasterSource), r.WinRate(), ms(r.Advantage))
	}

	return b.String()
}

func (r *Report) sourceName(src SourceID) string {
	if src == SourceSecond {
		return r.SecondName
	}
	return r.FirstName
}
