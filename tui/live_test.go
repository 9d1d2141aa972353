package tui

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/alert"
	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/engine"
	"github.com/tonhe/meerkat/internal/icinga"
)

type fakeHandle struct {
	p   *fakePlayer
	src string
}

func (h *fakeHandle) Play() error {
	h.p.played = append(h.p.played, h.src)
	return nil
}

func (h *fakeHandle) Close() error {
	h.p.closed++
	return nil
}

type fakePlayer struct {
	loaded []string
	played []string
	closed int
}

func (p *fakePlayer) Load(src string) (alert.Handle, error) {
	p.loaded = append(p.loaded, src)
	return &fakeHandle{p: p, src: src}, nil
}

type fakeSnaps map[string]engine.Snapshot

func (f fakeSnaps) GetSnapshot(key string) (engine.Snapshot, error) {
	s, ok := f[key]
	if !ok {
		return engine.Snapshot{}, errors.New("no poller")
	}
	return s, nil
}

func (f fakeSnaps) set(key string, st icinga.State) {
	f[key] = engine.Snapshot{Key: key, Observed: true, Result: icinga.Result{State: st}}
}

func watchedDoc() dashboard.Dashboard {
	return dashboard.Dashboard{
		Title:         "Wall",
		CriticalSound: "/upload/crit.mp3",
		OkSound:       "/upload/ok.mp3",
		Elements: []dashboard.Element{{
			Type:  dashboard.CheckCard,
			Title: "HTTP",
			Options: dashboard.Options{
				"objectType": "service",
				"objectName": "web01!http",
			},
		}},
	}
}

func newTestLive() (*LiveSession, *fakePlayer) {
	p := &fakePlayer{}
	resolve := func(s string) string { return "http://meerkat" + s }
	coord := alert.NewCoordinator(p, zerolog.Nop(), alert.WithResolver(resolve))
	return NewLiveSession(coord, p, resolve, zerolog.Nop()), p
}

func TestLiveSessionAlertsOnTransition(t *testing.T) {
	live, p := newTestLive()
	doc := watchedDoc()
	key := doc.Selector(0).Key()
	snaps := fakeSnaps{}

	live.Load(&doc)
	snaps.set(key, icinga.StateOK)
	if n := live.Observe(doc, snaps); n != 0 {
		t.Fatalf("first observation played %d alerts, want 0", n)
	}

	snaps.set(key, icinga.StateCritical)
	if n := live.Observe(doc, snaps); n != 1 {
		t.Fatalf("ok -> critical played %d alerts, want 1", n)
	}
	if len(p.played) != 1 || p.played[0] != "http://meerkat/upload/crit.mp3" {
		t.Errorf("played = %v", p.played)
	}

	if n := live.Observe(doc, snaps); n != 0 {
		t.Errorf("unchanged state played %d alerts", n)
	}
}

func TestLiveSessionMute(t *testing.T) {
	live, p := newTestLive()
	doc := watchedDoc()
	key := doc.Selector(0).Key()
	snaps := fakeSnaps{}

	live.Load(&doc)
	snaps.set(key, icinga.StateOK)
	live.Observe(doc, snaps)

	live.SetMuted(true, &doc)
	snaps.set(key, icinga.StateCritical)
	if n := live.Observe(doc, snaps); n != 0 {
		t.Errorf("muted session played %d alerts", n)
	}

	live.SetMuted(false, &doc)
	doc.GlobalMute = true
	snaps.set(key, icinga.StateOK)
	if n := live.Observe(doc, snaps); n != 0 {
		t.Errorf("globally muted dashboard played %d alerts", n)
	}

	doc.GlobalMute = false
	doc.Elements[0].Options["muteAlerts"] = true
	snaps.set(key, icinga.StateCritical)
	if n := live.Observe(doc, snaps); n != 0 {
		t.Errorf("muted element played %d alerts", n)
	}
	if len(p.played) != 0 {
		t.Errorf("played = %v, want nothing", p.played)
	}
}

func TestLiveSessionLoadForgetsStates(t *testing.T) {
	live, _ := newTestLive()
	doc := watchedDoc()
	key := doc.Selector(0).Key()
	snaps := fakeSnaps{}

	live.Load(&doc)
	snaps.set(key, icinga.StateOK)
	live.Observe(doc, snaps)

	live.Load(&doc)
	snaps.set(key, icinga.StateCritical)
	if n := live.Observe(doc, snaps); n != 0 {
		t.Errorf("first observation after Load played %d alerts", n)
	}
}

func TestLiveSessionAudioStreams(t *testing.T) {
	live, p := newTestLive()
	doc := dashboard.Dashboard{
		Title: "Radio",
		Elements: []dashboard.Element{{
			Type:    dashboard.AudioStream,
			Options: dashboard.Options{"source": "/upload/stream.mp3"},
		}},
	}

	live.Load(&doc)
	if len(p.played) != 1 || p.played[0] != "http://meerkat/upload/stream.mp3" {
		t.Fatalf("stream not started: %v", p.played)
	}

	live.SetMuted(true, &doc)
	if p.closed != 1 {
		t.Errorf("muting should stop the stream, closed = %d", p.closed)
	}

	live.SetMuted(false, &doc)
	if len(p.played) != 2 {
		t.Errorf("unmuting should restart the stream, played = %v", p.played)
	}

	if err := live.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if p.closed != 2 {
		t.Errorf("Close should stop the stream, closed = %d", p.closed)
	}
}

func pairDoc() dashboard.Dashboard {
	card := func(title, name string) dashboard.Element {
		return dashboard.Element{
			Type:    dashboard.CheckCard,
			Title:   title,
			Options: dashboard.Options{"objectType": "service", "objectName": name},
		}
	}
	return dashboard.Dashboard{
		Slug:          "wall",
		CriticalSound: "/upload/crit.mp3",
		OkSound:       "/upload/ok.mp3",
		Elements:      []dashboard.Element{card("A", "a!x"), card("B", "b!y")},
	}
}

func TestLiveSessionEditsWithoutStateChange(t *testing.T) {
	tests := []struct {
		name string
		edit func(dashboard.Dashboard) dashboard.Dashboard
	}{
		{"delete first", func(d dashboard.Dashboard) dashboard.Dashboard {
			d.Elements = d.Elements[1:]
			return d
		}},
		{"reorder", func(d dashboard.Dashboard) dashboard.Dashboard {
			d.Elements = []dashboard.Element{d.Elements[1], d.Elements[0]}
			return d
		}},
		{"selector change", func(d dashboard.Dashboard) dashboard.Dashboard {
			els := append([]dashboard.Element(nil), d.Elements...)
			els[0].Options = dashboard.Options{"objectType": "service", "objectName": "b!y"}
			d.Elements = els
			return d
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live, p := newTestLive()
			doc := pairDoc()
			snaps := fakeSnaps{}
			snaps.set(doc.Selector(0).Key(), icinga.StateOK)
			snaps.set(doc.Selector(1).Key(), icinga.StateCritical)

			live.Load(&doc)
			live.Observe(doc, snaps)
			live.Observe(doc, snaps)

			edited := tt.edit(doc)
			if n := live.Observe(edited, snaps); n != 0 {
				t.Errorf("played %d alerts with no state change: %v", n, p.played)
			}
		})
	}
}

func TestLiveSessionForgetsRemovedElements(t *testing.T) {
	live, p := newTestLive()
	doc := pairDoc()
	keyA := doc.Selector(0).Key()
	snaps := fakeSnaps{}
	snaps.set(keyA, icinga.StateOK)
	snaps.set(doc.Selector(1).Key(), icinga.StateCritical)

	live.Load(&doc)
	live.Observe(doc, snaps)

	without := doc
	without.Elements = doc.Elements[1:]
	live.Observe(without, snaps)

	// A comes back already critical; it was not watched during the change.
	snaps.set(keyA, icinga.StateCritical)
	if n := live.Observe(doc, snaps); n != 0 {
		t.Errorf("re-added element played %d alerts: %v", n, p.played)
	}
	snaps.set(keyA, icinga.StateOK)
	if n := live.Observe(doc, snaps); n != 1 {
		t.Errorf("critical -> ok after re-add played %d alerts, want 1", n)
	}
}
