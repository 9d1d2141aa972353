package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/internal/metrics"
)

// Manager coordinates one Poller per distinct selector. Elements watching
// the same objects share a poller.
type Manager struct {
	mu          sync.RWMutex
	ctx         context.Context
	fetcher     Fetcher
	opts        Options
	log         zerolog.Logger
	pollers     map[string]*Poller
	gen         uint64
	subscribers []chan Event
}

// NewManager creates an empty Manager. Pollers it starts live under ctx.
func NewManager(ctx context.Context, fetcher Fetcher, opts Options, logger zerolog.Logger) *Manager {
	return &Manager{
		ctx:     ctx,
		fetcher: fetcher,
		opts:    opts,
		log:     logger.With().Str("component", "engine").Logger(),
		pollers: make(map[string]*Poller),
	}
}

// Start launches a Poller for sel.
func (m *Manager) Start(sel icinga.Selector) error {
	if sel.Idle() {
		return fmt.Errorf("selector %s is not configured", sel)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pollers[sel.Key()]; exists {
		return fmt.Errorf("poller %q already running", sel.Key())
	}
	m.startLocked(sel)
	return nil
}

func (m *Manager) startLocked(sel icinga.Selector) {
	m.gen++
	p := NewPoller(sel, m.gen, m.fetcher, m.opts, m.log)
	p.onEvent = m.dispatch
	m.pollers[sel.Key()] = p
	p.Start(m.ctx)
	metrics.ActivePollers.Set(float64(len(m.pollers)))
	m.log.Debug().Str("selector", sel.String()).Uint64("generation", m.gen).Msg("poller started")
}

// Stop halts the Poller for key and removes it.
func (m *Manager) Stop(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pollers[key]
	if !ok {
		return fmt.Errorf("poller %q not found", key)
	}
	p.Stop()
	delete(m.pollers, key)
	metrics.ActivePollers.Set(float64(len(m.pollers)))
	return nil
}

// Sync makes the running pollers match sels exactly: pollers for new
// selectors start, pollers for selectors no longer present stop.
func (m *Manager) Sync(sels []icinga.Selector) {
	want := make(map[string]icinga.Selector, len(sels))
	for _, sel := range sels {
		if !sel.Idle() {
			want[sel.Key()] = sel
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, p := range m.pollers {
		if _, ok := want[key]; !ok {
			p.Stop()
			delete(m.pollers, key)
		}
	}
	for key, sel := range want {
		if _, ok := m.pollers[key]; !ok {
			m.startLocked(sel)
		}
	}
	metrics.ActivePollers.Set(float64(len(m.pollers)))
}

// GetSnapshot returns a point-in-time snapshot for the selector key.
func (m *Manager) GetSnapshot(key string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pollers[key]
	if !ok {
		return Snapshot{}, fmt.Errorf("poller %q not found", key)
	}
	return p.Snapshot(), nil
}

// Subscribe returns a channel that receives events from every current and
// future poller. Events from pollers that have since been replaced are
// dropped.
func (m *Manager) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, ch)
	return ch
}

func (m *Manager) dispatch(ev Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pollers[ev.Key]
	if !ok || p.gen != ev.Generation {
		return
	}
	for _, ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Refresh makes the poller for key fetch immediately.
func (m *Manager) Refresh(key string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.pollers[key]; ok {
		p.Refresh()
	}
}

// RefreshAll makes every poller fetch immediately.
func (m *Manager) RefreshAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.pollers {
		p.Refresh()
	}
}

// RefreshObject refreshes the pollers an Icinga event about objectName
// concerns and returns how many there were.
func (m *Manager) RefreshObject(objectName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.pollers {
		if p.Concerns(objectName) {
			p.Refresh()
			n++
		}
	}
	return n
}

// ListPollers returns summary info for all running pollers, sorted by key.
func (m *Manager) ListPollers() []PollerInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]PollerInfo, 0, len(m.pollers))
	for _, p := range m.pollers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// Stale reports whether any poller's latest fetch failed.
func (m *Manager) Stale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.pollers {
		if p.Info().Stale {
			return true
		}
	}
	return false
}

// StopAll halts and removes all running pollers.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, p := range m.pollers {
		p.Stop()
		delete(m.pollers, key)
	}
	metrics.ActivePollers.Set(0)
}
