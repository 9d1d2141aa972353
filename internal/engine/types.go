package engine

import (
	"context"
	"time"

	"github.com/tonhe/meerkat/internal/icinga"
)

// Fetcher resolves a selector to an aggregated Icinga result.
type Fetcher interface {
	Fetch(ctx context.Context, sel icinga.Selector) (icinga.Result, error)
}

// PollState is the lifecycle state of a selector poller.
type PollState int

const (
	PollIdle PollState = iota
	PollFetching
	PollSettled
	PollStopped
)

func (s PollState) String() string {
	switch s {
	case PollIdle:
		return "idle"
	case PollFetching:
		return "fetching"
	case PollSettled:
		return "settled"
	case PollStopped:
		return "stopped"
	}
	return "invalid"
}

// Sample is one entry of a poller's state history.
type Sample struct {
	At    time.Time
	Code  int
	State icinga.State
}

// Snapshot is a point-in-time copy of a poller's view of its selector.
type Snapshot struct {
	Key        string
	Selector   icinga.Selector
	Generation uint64
	State      PollState
	Result     icinga.Result
	// Observed is false until the first successful fetch.
	Observed bool
	// Stale is set while the latest fetch failed and Result is last-known.
	Stale      bool
	Err        error
	LastPoll   time.Time
	NextPoll   time.Time
	PollCount  int
	ErrorCount int
	History    []Sample
	// Since is when the current state was first seen, within History.
	Since time.Time
}

// DisplayState is the state elements should render. Before the first
// result arrives it is StateNone.
func (s Snapshot) DisplayState() icinga.State {
	if !s.Observed {
		return icinga.StateNone
	}
	return s.Result.State
}

// PollerInfo provides summary information about a running poller.
type PollerInfo struct {
	Key        string
	Selector   icinga.Selector
	State      PollState
	Stale      bool
	LastPoll   time.Time
	NextPoll   time.Time
	PollCount  int
	ErrorCount int
}

// Event is emitted to subscribers after each poll.
type Event struct {
	Key        string
	Generation uint64
	Snapshot   Snapshot
}

// Options tunes poll scheduling.
type Options struct {
	// Lag is the fraction of the time until the next check added as slack.
	Lag float64
	// MinInterval floors the delay between polls of one selector.
	MinInterval time.Duration
	// RetryInterval is the delay after a failed poll.
	RetryInterval time.Duration
	// History is how many samples each poller keeps.
	History int
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns the scheduling used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Lag:           icinga.DefaultLag,
		MinInterval:   time.Second,
		RetryInterval: 15 * time.Second,
		History:       120,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinInterval <= 0 {
		o.MinInterval = d.MinInterval
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = d.RetryInterval
	}
	if o.History <= 0 {
		o.History = d.History
	}
	if o.Lag < 0 {
		o.Lag = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
