// Package alert plays sounds when monitored elements change state.
package alert

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/internal/metrics"
)

// Handle is a loaded sound that can be played repeatedly.
type Handle interface {
	Play() error
	Close() error
}

// Player loads sound sources into playable handles.
type Player interface {
	Load(src string) (Handle, error)
}

// Mute carries the two switches that silence an alert.
type Mute struct {
	Global  bool
	Element bool
}

// Muted reports whether either switch is on.
func (m Mute) Muted() bool { return m.Global || m.Element }

// ShouldPlay reports whether a transition from prev to next is alertable:
// prev must be a real state and the state must have changed.
func ShouldPlay(prev, next icinga.State) bool {
	return prev.Observed() && next.Observed() && prev != next
}

// ResolveSound picks the element override for state, falling back to the
// dashboard default.
func ResolveSound(state icinga.State, overrides, defaults dashboard.Sounds) string {
	if src := overrides.For(state); src != "" {
		return src
	}
	return defaults.For(state)
}

type cached struct {
	src    string
	handle Handle
}

// Coordinator owns one sound handle per state and plays it on
// transitions. The zero value is not usable; use NewCoordinator.
type Coordinator struct {
	mu      sync.Mutex
	player  Player
	resolve func(string) string
	handles map[icinga.State]*cached
	log     zerolog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithResolver rewrites sound references before loading, e.g. to turn
// server-relative paths into absolute URLs.
func WithResolver(fn func(string) string) Option {
	return func(c *Coordinator) { c.resolve = fn }
}

// NewCoordinator creates a Coordinator that loads sounds with player.
func NewCoordinator(player Player, logger zerolog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		player:  player,
		resolve: func(s string) string { return s },
		handles: make(map[icinga.State]*cached),
		log:     logger.With().Str("component", "alert").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnStateChange plays the sound for next if the transition is alertable,
// a sound is configured and nothing mutes it. It reports whether a sound
// was played.
func (c *Coordinator) OnStateChange(elementID string, prev, next icinga.State, overrides, defaults dashboard.Sounds, mute Mute) bool {
	if !ShouldPlay(prev, next) || mute.Muted() {
		return false
	}
	src := ResolveSound(next, overrides, defaults)
	if src == "" {
		return false
	}
	src = c.resolve(src)

	c.mu.Lock()
	defer c.mu.Unlock()

	h, err := c.handleLocked(next, src)
	if err != nil {
		c.log.Warn().Err(err).Str("src", src).Msg("load alert sound")
		return false
	}
	if err := h.Play(); err != nil {
		c.log.Warn().Err(err).Str("element", elementID).Msg("play alert sound")
		return false
	}
	metrics.AlertsPlayed.WithLabelValues(string(next)).Inc()
	c.log.Info().
		Str("element", elementID).
		Str("from", string(prev)).
		Str("to", string(next)).
		Msg("alert played")
	return true
}

// handleLocked returns the cached handle for state, rebuilding it when the
// source changed.
func (c *Coordinator) handleLocked(state icinga.State, src string) (Handle, error) {
	if entry, ok := c.handles[state]; ok {
		if entry.src == src {
			return entry.handle, nil
		}
		entry.handle.Close()
		delete(c.handles, state)
	}
	h, err := c.player.Load(src)
	if err != nil {
		return nil, err
	}
	c.handles[state] = &cached{src: src, handle: h}
	return h, nil
}

// Close releases every cached handle.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for state, entry := range c.handles {
		if err := entry.handle.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(c.handles, state)
	}
	return errors.Join(errs...)
}

// Tracker remembers the last state seen per element.
type Tracker struct {
	mu   sync.Mutex
	last map[string]icinga.State
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]icinga.State)}
}

// Swap records next for id and returns the state it replaced.
func (t *Tracker) Swap(id string, next icinga.State) icinga.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.last[id]
	t.last[id] = next
	return prev
}

// Forget drops what is known about id, so its next state is not alerted.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, id)
}

// Retain forgets every element whose id is not in keep.
func (t *Tracker) Retain(keep map[string]bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.last {
		if !keep[id] {
			delete(t.last, id)
		}
	}
}

// Reset forgets every element.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[string]icinga.State)
}
