package cmpstreams

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/romkoth/shredlink-benchmarking/pkg/cmpstreams/feeds"
)

// TransactionStream is the capability a compared stream must provide:
// deliver raw frames until stopped or dead, and decode a frame into a
// transaction signature. A third stream could be added by composing
// another implementation rather than special-casing.
type TransactionStream interface {
	Receive(ctx context.Context, wg *sync.WaitGroup, out chan *feeds.Message)
	ParseMessage(message *feeds.Message) (string, error)
	Name() string
}

const (
	stateIdle int32 = iota
	stateRunning
	stateDraining
	stateDone
)

const (
	bufSize         = 8192
	drainGrace      = 3 * time.Second
	timestampFormat = "2006-01-02T15:04:05.000"
)

// ErrRunnerUsed is returned when Run is called on an already used Runner.
var ErrRunnerUsed = errors.New("runner is single-use, construct a new one per run")

// Runner drives one fixed-duration comparison of two streams. It fans
// events from both streams into the correlator, forwards matches to the
// aggregator, and always finishes with a Report once the duration elapses
// or the context is cancelled.
type Runner struct {
	first  TransactionStream
	second TransactionStream

	correlator *Correlator
	stats      *StatsAggregator
	clock      func() time.Time
	state      atomic.Int32

	// RunID tags the report and dump rows. DumpWriter, when set, gets one
	// CSV row per signature.
	RunID      string
	DumpWriter *csv.Writer
}

func NewRunner(first, second TransactionStream) *Runner {
	return &Runner{
		first:      first,
		second:     second,
		correlator: NewCorrelator(),
		stats:      NewStatsAggregator(),
		clock:      time.Now,
	}
}

// Run executes the benchmark for the given duration. Cancellation of ctx
// ends the run early; either way a Report is produced. A Runner instance
// is single-use.
func (r *Runner) Run(ctx context.Context, duration time.Duration) (*Report, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("benchmark duration must be positive, got %s", duration)
	}
	if !r.state.CompareAndSwap(stateIdle, stateRunning) {
		return nil, ErrRunnerUsed
	}

	var (
		start             = r.clock()
		wallStart         = time.Now()
		readerCtx, cancel = context.WithCancel(ctx)
		readerGroup       sync.WaitGroup
		firstCh           = make(chan *feeds.Message, bufSize)
		secondCh          = make(chan *feeds.Message, bufSize)
		intakeFirst       = firstCh
		intakeSecond      = secondCh
		failed            [2]bool
	)
	defer cancel()

	readerGroup.Add(2)
	go r.first.Receive(readerCtx, &readerGroup, firstCh)
	go r.second.Receive(readerCtx, &readerGroup, secondCh)

	timer := time.NewTimer(duration)
	defer timer.Stop()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	log.Infof("benchmark started, end time: %s", time.Now().Add(duration).Format(timestampFormat))

intake:
	for {
		select {
		case <-ctx.Done():
			log.Infof("benchmark cancelled, draining")
			break intake
		case <-timer.C:
			log.Infof("benchmark window elapsed, draining")
			break intake
		case <-ticker.C:
			r.logProgress(wallStart)
		case msg, ok := <-intakeFirst:
			if !ok {
				failed[SourceFirst] = true
				intakeFirst = nil
				if intakeSecond == nil {
					log.Errorf("both streams ended before the benchmark window elapsed")
					break intake
				}
				continue
			}
			r.ingest(SourceFirst, r.first, msg)
		case msg, ok := <-intakeSecond:
			if !ok {
				failed[SourceSecond] = true
				intakeSecond = nil
				if intakeFirst == nil {
					log.Errorf("both streams ended before the benchmark window elapsed")
					break intake
				}
				continue
			}
			r.ingest(SourceSecond, r.second, msg)
		}
	}

	r.state.Store(stateDraining)
	cancel()

	stopped := make(chan struct{})
	go func() {
		readerGroup.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(drainGrace):
		log.Errorf("stream readers did not stop within %s", drainGrace)
	}

	unmatched := r.correlator.Drain()
	r.discardLate(firstCh, secondCh)

	for _, u := range unmatched {
		r.dumpUnmatched(u)
	}

	end := r.clock()

	report := r.stats.Finalize(len(unmatched))
	report.RunID = r.RunID
	report.FirstName = r.first.Name()
	report.SecondName = r.second.Name()
	report.Start = start
	report.End = end
	report.Duration = end.Sub(start)
	report.Received[SourceFirst] = r.correlator.Received(SourceFirst)
	report.Received[SourceSecond] = r.correlator.Received(SourceSecond)
	report.Dropped = r.correlator.Dropped()
	if secs := report.Duration.Seconds(); secs > 0 {
		report.Rate = float64(report.Matched+report.Unmatched) / secs
	}
	report.LateDropped = r.correlator.LateDropped()
	report.SourceFailed[SourceFirst] = failed[SourceFirst] || report.Received[SourceFirst] == 0
	report.SourceFailed[SourceSecond] = failed[SourceSecond] || report.Received[SourceSecond] == 0

	r.state.Store(stateDone)

	return report, nil
}

func (r *Runner) ingest(source SourceID, stream TransactionStream, msg *feeds.Message) {
	if msg.Err != nil {
		log.Errorf("failed to read message from feed %s: %v", stream.Name(), msg.Err)
		return
	}

	at := r.clock()

	key, err := stream.ParseMessage(msg)
	if err != nil {
		r.correlator.CountDrop(source)
		log.Debugf("dropping undecodable event from %s: %v", stream.Name(), err)
		return
	}

	log.Debugf("got message at %s from %s, signature: %s", at.Format(timestampFormat), stream.Name(), key)

	if match, ok := r.correlator.Observe(source, key, at); ok {
		r.stats.Record(match)
		r.dumpMatch(match)
	}
}

// discardLate counts events still sitting in the intake channels after
// draining began. Processing them could retroactively reclassify records
// that were just finalized.
func (r *Runner) discardLate(firstCh, secondCh chan *feeds.Message) {
	for {
		select {
		case msg, ok := <-firstCh:
			if !ok {
				firstCh = nil
				continue
			}
			if msg.Err == nil {
				r.correlator.CountLate()
			}
		case msg, ok := <-secondCh:
			if !ok {
				secondCh = nil
				continue
			}
			if msg.Err == nil {
				r.correlator.CountLate()
			}
		default:
			return
		}
	}
}

func (r *Runner) logProgress(wallStart time.Time) {
	var (
		matched  = r.stats.Matched()
		distinct = matched + r.correlator.LiveCount()
		elapsed  = time.Since(wallStart).Seconds()
		rate     float64
	)
	if elapsed > 0 {
		rate = float64(distinct) / elapsed
	}

	log.Infof("progress: %d distinct signatures, %d matched, %.1f/s", distinct, matched, rate)
}

func (r *Runner) dumpMatch(m Match) {
	if r.DumpWriter == nil {
		return
	}

	signed := m.Delta
	if m.Winner == SourceSecond {
		signed = -m.Delta
	}

	record := []string{
		m.Key,
		m.FirstSeen.Format(timestampFormat),
		m.SecondSeen.Format(timestampFormat),
		strconv.FormatInt(signed.Milliseconds(), 10),
	}
	if err := r.DumpWriter.Write(record); err != nil {
		log.Errorf("cannot add signature %q to dump file: %v", m.Key, err)
	}
}

func (r *Runner) dumpUnmatched(u UnmatchedRecord) {
	if r.DumpWriter == nil {
		return
	}

	firstSeen, secondSeen := "not received", "not received"
	switch u.Source {
	case SourceFirst:
		firstSeen = u.Seen.Format(timestampFormat)
	case SourceSecond:
		secondSeen = u.Seen.Format(timestampFormat)
	}

	record := []string{u.Key, firstSeen, secondSeen, "0"}
	if err := r.DumpWriter.Write(record); err != nil {
		log.Errorf("cannot add signature %q to dump file: %v", u.Key, err)
	}
}
