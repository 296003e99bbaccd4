package cmpstreams

import "time"

// SourceID identifies one of the two compared streams.
type SourceID int

const (
	// SourceNone marks a tie or an absent verdict.
	SourceNone SourceID = iota - 1
	SourceFirst
	SourceSecond
)

func (s SourceID) String() string {
	switch s {
	case SourceFirst:
		return "first"
	case SourceSecond:
		return "second"
	default:
		return "none"
	}
}

// Match is produced exactly once per signature, the moment both streams
// have been observed for it. Delta is always non-negative; Winner is the
// stream whose instant was earlier, or SourceNone on an exact tie.
type Match struct {
	Key        string
	Delta      time.Duration
	Winner     SourceID
	FirstSeen  time.Time
	SecondSeen time.Time
}

// UnmatchedRecord is a signature observed from only one stream by the end
// of the run.
type UnmatchedRecord struct {
	Key    string
	Source SourceID
	Seen   time.Time
}
