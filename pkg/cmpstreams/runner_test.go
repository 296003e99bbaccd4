package cmpstreams

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/romkoth/shredlink-benchmarking/pkg/cmpstreams/feeds"
)

type fakeEvent struct {
	key   string
	after time.Duration
}

// fakeStream replays a scripted sequence of events, then either stays
// open until cancelled (a live but quiet feed) or closes its channel
// (a dead feed).
type fakeStream struct {
	name   string
	events []fakeEvent
	stay   bool
}

func (f *fakeStream) Receive(ctx context.Context, wg *sync.WaitGroup, out chan *feeds.Message) {
	defer wg.Done()
	defer close(out)

	for _, ev := range f.events {
		if ev.after > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(ev.after):
			}
		}

		select {
		case <-ctx.Done():
			return
		case out <- &feeds.Message{Bytes: []byte(ev.key)}:
		}
	}

	if f.stay {
		<-ctx.Done()
	}
}

func (f *fakeStream) ParseMessage(message *feeds.Message) (string, error) {
	key := string(message.Bytes)
	if strings.HasPrefix(key, "!") {
		return "", errors.New("malformed event payload")
	}
	return key, nil
}

func (f *fakeStream) Name() string { return f.name }

func TestRunnerEndToEnd(t *testing.T) {
	first := &fakeStream{
		name: "A",
		events: []fakeEvent{
			{key: "k1"},
			{key: "k2"},
		},
		stay: true,
	}
	second := &fakeStream{
		name: "B",
		events: []fakeEvent{
			{key: "k1", after: 50 * time.Millisecond},
			{key: "k3", after: 10 * time.Millisecond},
		},
		stay: true,
	}

	runner := NewRunner(first, second)
	report, err := runner.Run(context.Background(), 300*time.Millisecond)
	require.NoError(t, err)

	require.Equal(t, 1, report.Matched)
	require.Equal(t, 2, report.Unmatched)
	require.EqualValues(t, 2, report.Received[SourceFirst])
	require.EqualValues(t, 2, report.Received[SourceSecond])
	require.Equal(t, 1, report.WonFirst)
	require.Equal(t, 0, report.WonSecond)
	require.Equal(t, SourceFirst, report.FasterSource)
	require.Greater(t, report.Mean, time.Duration(0))
	require.False(t, report.SourceFailed[SourceFirst])
	require.False(t, report.SourceFailed[SourceSecond])
}

func TestRunnerIsSingleUse(t *testing.T) {
	runner := NewRunner(
		&fakeStream{name: "A", stay: true},
		&fakeStream{name: "B", stay: true},
	)

	_, err := runner.Run(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), 50*time.Millisecond)
	require.ErrorIs(t, err, ErrRunnerUsed)
}

func TestRunnerRejectsNonPositiveDuration(t *testing.T) {
	runner := NewRunner(
		&fakeStream{name: "A", stay: true},
		&fakeStream{name: "B", stay: true},
	)

	_, err := runner.Run(context.Background(), 0)
	require.Error(t, err)
}

func TestRunnerDegradedWhenOneStreamSilent(t *testing.T) {
	first := &fakeStream{
		name: "A",
		events: []fakeEvent{
			{key: "k1"},
			{key: "k2"},
		},
		stay: true,
	}
	second := &fakeStream{name: "B"} // dies immediately

	started := time.Now()
	runner := NewRunner(first, second)
	report, err := runner.Run(context.Background(), 200*time.Millisecond)
	require.NoError(t, err)

	require.Equal(t, 0, report.Matched)
	require.True(t, report.NoData)
	require.Equal(t, 2, report.Unmatched)
	require.EqualValues(t, 2, report.Received[SourceFirst])
	require.EqualValues(t, 0, report.Received[SourceSecond])
	require.True(t, report.SourceFailed[SourceSecond])
	require.False(t, report.SourceFailed[SourceFirst])
	require.Less(t, time.Since(started), 200*time.Millisecond+drainGrace)
}

func TestRunnerNoDataFromEitherSource(t *testing.T) {
	runner := NewRunner(
		&fakeStream{name: "A"},
		&fakeStream{name: "B"},
	)

	report, err := runner.Run(context.Background(), 5*time.Second)
	require.NoError(t, err)

	require.True(t, report.NoData)
	require.EqualValues(t, 0, report.Received[SourceFirst])
	require.EqualValues(t, 0, report.Received[SourceSecond])
	require.True(t, report.SourceFailed[SourceFirst])
	require.True(t, report.SourceFailed[SourceSecond])
	require.Contains(t, report.Format(), "No data from either source")
}

func TestRunnerCancellation(t *testing.T) {
	runner := NewRunner(
		&fakeStream{name: "A", stay: true},
		&fakeStream{name: "B", stay: true},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	report, err := runner.Run(ctx, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Less(t, time.Since(started), drainGrace+time.Second)
}

func TestRunnerCountsUndecodableEvents(t *testing.T) {
	first := &fakeStream{
		name: "A",
		events: []fakeEvent{
			{key: "k1"},
			{key: "!garbage"},
		},
		stay: true,
	}
	second := &fakeStream{
		name: "B",
		events: []fakeEvent{
			{key: "k1", after: 20 * time.Millisecond},
		},
		stay: true,
	}

	runner := NewRunner(first, second)
	report, err := runner.Run(context.Background(), 200*time.Millisecond)
	require.NoError(t, err)

	require.Equal(t, 1, report.Matched)
	require.EqualValues(t, 1, report.Dropped)
	require.EqualValues(t, 2, report.Received[SourceFirst])
}
