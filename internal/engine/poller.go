package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/internal/metrics"
)

// Poller keeps one selector's Icinga state fresh. Each fetch schedules the
// next one from the result's next check time, so objects with long check
// intervals are polled rarely and recently-checked ones promptly.
type Poller struct {
	mu          sync.RWMutex
	sel         icinga.Selector
	key         string
	gen         uint64
	fetcher     Fetcher
	opts        Options
	log         zerolog.Logger
	state       PollState
	result      icinga.Result
	observed    bool
	stale       bool
	err         error
	lastPoll    time.Time
	nextPoll    time.Time
	pollCount   int
	errorCount  int
	history     *History
	subscribers []chan Event
	onEvent     func(Event)
	refresh     chan struct{}
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewPoller creates a Poller for sel. gen tags every event it emits so
// consumers can discard output from a poller that has been replaced.
func NewPoller(sel icinga.Selector, gen uint64, fetcher Fetcher, opts Options, logger zerolog.Logger) *Poller {
	opts = opts.withDefaults()
	return &Poller{
		sel:     sel,
		key:     sel.Key(),
		gen:     gen,
		fetcher: fetcher,
		opts:    opts,
		log:     logger.With().Str("selector", sel.String()).Logger(),
		history: NewHistory(opts.History),
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Run polls until ctx is cancelled. The first fetch happens immediately.
// The timer and any in-flight request are owned by this goroutine and end
// with it.
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.state = PollStopped
			p.mu.Unlock()
			return
		case <-timer.C:
		case <-p.refresh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		delay, ok := p.poll(ctx)
		if !ok {
			continue
		}
		timer.Reset(delay)
	}
}

// poll runs one fetch and returns the delay before the next one. ok is
// false when the response was discarded.
func (p *Poller) poll(ctx context.Context) (time.Duration, bool) {
	p.mu.Lock()
	p.state = PollFetching
	p.mu.Unlock()

	res, err := p.fetcher.Fetch(ctx, p.sel)

	p.mu.Lock()
	defer p.mu.Unlock()

	// Only Run calls poll, so requests never overlap. A poller replaced by
	// Sync has its ctx cancelled, which is what discards its last answer.
	if ctx.Err() != nil {
		metrics.Polls.WithLabelValues("stale").Inc()
		return 0, false
	}

	now := p.opts.Now()
	p.lastPoll = now
	p.pollCount++

	var delay time.Duration
	if err != nil {
		p.errorCount++
		p.stale = true
		p.err = err
		delay = p.opts.RetryInterval
		metrics.Polls.WithLabelValues("error").Inc()
		p.log.Warn().Err(err).Dur("retry", delay).Msg("poll failed")
	} else {
		p.result = res
		p.observed = true
		p.stale = false
		p.err = nil
		p.history.Add(Sample{At: now, Code: res.Code, State: res.State})
		delay = icinga.NextRefresh(res.NextCheck, now, p.opts.Lag)
		metrics.Polls.WithLabelValues("ok").Inc()
		p.log.Debug().Str("state", string(res.State)).Dur("next", delay).Msg("poll settled")
	}
	if delay < p.opts.MinInterval {
		delay = p.opts.MinInterval
	}
	p.nextPoll = now.Add(delay)
	p.state = PollSettled
	p.notify()
	return delay, true
}

// Refresh asks the poller to fetch now instead of waiting for its timer.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Concerns reports whether an Icinga event about objectName affects this
// poller's last result.
func (p *Poller) Concerns(objectName string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.sel.Filter == "" && p.sel.Name == objectName {
		return true
	}
	for _, o := range p.result.Objects {
		if o.Matches(objectName) {
			return true
		}
	}
	return false
}

// Snapshot returns a point-in-time copy of the poller state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Snapshot {
	return Snapshot{
		Key:        p.key,
		Selector:   p.sel,
		Generation: p.gen,
		State:      p.state,
		Result:     p.result,
		Observed:   p.observed,
		Stale:      p.stale,
		Err:        p.err,
		LastPoll:   p.lastPoll,
		NextPoll:   p.nextPoll,
		PollCount:  p.pollCount,
		ErrorCount: p.errorCount,
		History:    p.history.Samples(),
		Since:      p.history.Since(),
	}
}

// Subscribe returns a channel that receives an event after each poll.
func (p *Poller) Subscribe() <-chan Event {
	ch := make(chan Event, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// notify sends the current snapshot to all subscribers (non-blocking).
// Must be called while holding the write lock on p.mu.
func (p *Poller) notify() {
	event := Event{Key: p.key, Generation: p.gen, Snapshot: p.snapshotLocked()}
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	if p.onEvent != nil {
		go p.onEvent(event)
	}
}

// Info returns summary information about this poller.
func (p *Poller) Info() PollerInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PollerInfo{
		Key:        p.key,
		Selector:   p.sel,
		State:      p.state,
		Stale:      p.stale,
		LastPoll:   p.lastPoll,
		NextPoll:   p.nextPoll,
		PollCount:  p.pollCount,
		ErrorCount: p.errorCount,
	}
}

// Start runs the poller in its own goroutine under a child of ctx.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	go p.Run(ctx)
}

// Stop cancels the polling loop and any in-flight request. It does not
// wait; use Done for that.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once Run has returned.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
