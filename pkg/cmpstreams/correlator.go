package cmpstreams

import (
	"sync"
	"time"

	"github.com/romkoth/shredlink-benchmarking/internal/pkg/utils"
)

type arrivalRecord struct {
	firstSeen  time.Time
	secondSeen time.Time
}

// Correlator owns the live arrival record set shared by both stream
// readers. All mutation goes through Observe, which serializes arrivals
// for the same signature; raw access to the table is never exposed.
type Correlator struct {
	mu        sync.Mutex
	live      map[string]*arrivalRecord
	retired   utils.HashSet
	received  [2]int64
	dropped   [2]int64
	lateDrops int64
	drained   bool
}

func NewCorrelator() *Correlator {
	return &Correlator{
		live:    make(map[string]*arrivalRecord),
		retired: utils.NewHashSet(),
	}
}

// Observe records the arrival of key from source at the given instant.
// The first arrival per stream per signature wins; redelivered duplicates
// are ignored. When the second stream completes a record, the record is
// retired and the resulting Match returned. Calls after Drain are counted
// as late drops and not processed.
func (c *Correlator) Observe(source SourceID, key string, at time.Time) (Match, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drained {
		c.lateDrops++
		return Match{}, false
	}

	c.received[source]++

	// Redelivery of an already matched signature must not open a fresh
	// record, or the key would end the run classified twice.
	if c.retired.Contains(key) {
		return Match{}, false
	}

	rec, ok := c.live[key]
	if !ok {
		rec = &arrivalRecord{}
		switch source {
		case SourceFirst:
			rec.firstSeen = at
		case SourceSecond:
			rec.secondSeen = at
		}
		c.live[key] = rec
		return Match{}, false
	}

	switch source {
	case SourceFirst:
		if !rec.firstSeen.IsZero() {
			return Match{}, false
		}
		rec.firstSeen = at
	case SourceSecond:
		if !rec.secondSeen.IsZero() {
			return Match{}, false
		}
		rec.secondSeen = at
	}

	delete(c.live, key)
	c.retired.Add(key)

	match := Match{
		Key:        key,
		FirstSeen:  rec.firstSeen,
		SecondSeen: rec.secondSeen,
	}

	switch {
	case rec.firstSeen.Before(rec.secondSeen):
		match.Winner = SourceFirst
		match.Delta = rec.secondSeen.Sub(rec.firstSeen)
	case rec.secondSeen.Before(rec.firstSeen):
		match.Winner = SourceSecond
		match.Delta = rec.firstSeen.Sub(rec.secondSeen)
	default:
		match.Winner = SourceNone
	}

	return match, true
}

// CountDrop accounts for an event whose payload could not be decoded into
// a valid signature. The event still counts toward raw delivery volume.
func (c *Correlator) CountDrop(source SourceID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drained {
		c.lateDrops++
		return
	}

	c.received[source]++
	c.dropped[source]++
}

// CountLate accounts for an event delivered after draining began.
func (c *Correlator) CountLate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lateDrops++
}

// Drain closes the correlator for intake and returns every record still
// waiting on its second stream. It is called exactly once, after both
// readers stopped delivering.
func (c *Correlator) Drain() []UnmatchedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drained = true

	unmatched := make([]UnmatchedRecord, 0, len(c.live))
	for key, rec := range c.live {
		u := UnmatchedRecord{Key: key}
		if rec.firstSeen.IsZero() {
			u.Source = SourceSecond
			u.Seen = rec.secondSeen
		} else {
			u.Source = SourceFirst
			u.Seen = rec.firstSeen
		}
		unmatched = append(unmatched, u)
	}

	return unmatched
}

// Received returns the raw delivery count for a stream, duplicates and
// undecodable events included.
func (c *Correlator) Received(source SourceID) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.received[source]
}

// Dropped returns the number of undecodable events across both streams.
func (c *Correlator) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dropped[SourceFirst] + c.dropped[SourceSecond]
}

// LateDropped returns the number of events discarded after drain began.
func (c *Correlator) LateDropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lateDrops
}

// LiveCount returns the number of records still waiting on their second
// stream.
func (c *Correlator) LiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.live)
}
