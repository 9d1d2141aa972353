package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/icinga"
)

func newTestManager(t *testing.T, f Fetcher) *Manager {
	t.Helper()
	m := NewManager(context.Background(), f, testOptions(), zerolog.Nop())
	t.Cleanup(m.StopAll)
	return m
}

func TestManagerSync(t *testing.T) {
	m := newTestManager(t, blockingFetcher(nil))
	web := icinga.Selector{Type: icinga.Host, Name: "web01"}
	db := icinga.Selector{Type: icinga.Service, Name: "db01!pgsql"}

	m.Sync([]icinga.Selector{web, db, web, {}})
	if got := len(m.ListPollers()); got != 2 {
		t.Fatalf("expected 2 shared pollers, got %d", got)
	}

	m.Sync([]icinga.Selector{db})
	infos := m.ListPollers()
	if len(infos) != 1 || infos[0].Key != db.Key() {
		t.Fatalf("expected only %q, got %+v", db.Key(), infos)
	}
	if _, err := m.GetSnapshot(web.Key()); err == nil {
		t.Error("expected removed poller to be gone")
	}
}

func TestManagerStartDuplicate(t *testing.T) {
	m := newTestManager(t, blockingFetcher(nil))
	sel := icinga.Selector{Type: icinga.Host, Name: "web01"}
	if err := m.Start(sel); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := m.Start(sel); err == nil {
		t.Error("expected error starting the same selector twice")
	}
	if err := m.Start(icinga.Selector{Type: icinga.Host}); err == nil {
		t.Error("expected error for idle selector")
	}
	if err := m.Stop("host:missing"); err == nil {
		t.Error("expected error stopping unknown poller")
	}
}

func TestManagerDropsReplacedGeneration(t *testing.T) {
	m := newTestManager(t, blockingFetcher(nil))
	sel := icinga.Selector{Type: icinga.Host, Name: "web01"}
	m.Sync([]icinga.Selector{sel})
	ch := m.Subscribe()

	m.mu.RLock()
	current := m.pollers[sel.Key()].gen
	m.mu.RUnlock()

	m.dispatch(Event{Key: sel.Key(), Generation: current + 100})
	select {
	case ev := <-ch:
		t.Fatalf("event from replaced poller delivered: %+v", ev)
	default:
	}

	m.dispatch(Event{Key: sel.Key(), Generation: current})
	select {
	case ev := <-ch:
		if ev.Generation != current {
			t.Errorf("unexpected generation %d", ev.Generation)
		}
	case <-time.After(time.Second):
		t.Fatal("current event not delivered")
	}
}

func TestManagerForwardsPollEvents(t *testing.T) {
	f := &fakeFetcher{fn: func(ctx context.Context, call int) (icinga.Result, error) {
		return icinga.Result{State: icinga.StateDown, Code: 1, NextCheck: testNow.Add(time.Minute)}, nil
	}}
	m := newTestManager(t, f)
	ch := m.Subscribe()
	sel := icinga.Selector{Type: icinga.Host, Name: "web01"}
	m.Sync([]icinga.Selector{sel})

	ev := waitEvent(t, ch)
	if ev.Key != sel.Key() || ev.Snapshot.DisplayState() != icinga.StateDown {
		t.Errorf("unexpected event %q %q", ev.Key, ev.Snapshot.DisplayState())
	}
	if m.Stale() {
		t.Error("manager should not be stale after a successful poll")
	}
}

func TestManagerRefreshObject(t *testing.T) {
	m := newTestManager(t, blockingFetcher(nil))
	m.Sync([]icinga.Selector{
		{Type: icinga.Host, Name: "web01"},
		{Type: icinga.Service, Name: "db01!pgsql"},
	})
	if n := m.RefreshObject("web01"); n != 1 {
		t.Errorf("expected 1 poller refreshed, got %d", n)
	}
	if n := m.RefreshObject("mail01"); n != 0 {
		t.Errorf("expected 0 pollers refreshed, got %d", n)
	}
}
