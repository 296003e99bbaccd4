package cmpstreams

import (
	"math"
	"sort"
	"sync"
	"time"
)

var reportPercentiles = []int{50, 90, 95, 99}

// StatsAggregator accumulates match deltas during a run and turns them
// into summary statistics at finalize time. Samples are stored signed:
// positive means the first stream received the signature earlier.
type StatsAggregator struct {
	mu        sync.Mutex
	samples   []time.Duration
	matched   int
	wonFirst  int
	wonSecond int
	tied      int
}

func NewStatsAggregator() *StatsAggregator {
	return &StatsAggregator{}
}

// Record folds one match into the running aggregates.
func (a *StatsAggregator) Record(m Match) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.matched++

	switch m.Winner {
	case SourceFirst:
		a.wonFirst++
		a.samples = append(a.samples, m.Delta)
	case SourceSecond:
		a.wonSecond++
		a.samples = append(a.samples, -m.Delta)
	default:
		a.tied++
		a.samples = append(a.samples, 0)
	}
}

// Matched returns the number of matches recorded so far.
func (a *StatsAggregator) Matched() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.matched
}

// Finalize sorts the sample set once and computes the report statistics.
// It is deterministic for a fixed sample multiset regardless of arrival
// order. With zero matches the numeric fields stay zero and the report is
// flagged as having no data.
func (a *StatsAggregator) Finalize(unmatched int) *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := &Report{
		Matched:     a.matched,
		Unmatched:   unmatched,
		WonFirst:    a.wonFirst,
		WonSecond:   a.wonSecond,
		Tied:        a.tied,
		Percentiles: make(map[int]time.Duration, len(reportPercentiles)),
	}

	if a.matched == 0 {
		report.NoData = true
		return report
	}

	sorted := make([]time.Duration, len(a.samples))
	copy(sorted, a.samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	report.Mean = sum / time.Duration(len(sorted))
	report.Median = percentile(sorted, 50)
	report.Min = sorted[0]
	report.Max = sorted[len(sorted)-1]

	for _, p := range reportPercentiles {
		report.Percentiles[p] = percentile(sorted, float64(p))
	}

	switch {
	case a.wonFirst > a.wonSecond:
		report.FasterSource = SourceFirst
	case a.wonSecond > a.wonFirst:
		report.FasterSource = SourceSecond
	default:
		report.FasterSource = SourceNone
	}
	report.Advantage = report.Mean
	if report.Advantage < 0 {
		report.Advantage = -report.Advantage
	}

	return report
}

// percentile computes the p-th percentile of sorted using linear
// interpolation between the two nearest ranks.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + time.Duration(frac*float64(sorted[hi]-sorted[lo]))
}
