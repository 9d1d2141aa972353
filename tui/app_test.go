package tui

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/config"
	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/engine"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/internal/meerkat"
	"github.com/tonhe/meerkat/tui/views"
)

type fakeService struct {
	docs map[string]dashboard.Dashboard
}

func (s *fakeService) Create(ctx context.Context, d dashboard.Dashboard) (string, error) {
	slug := dashboard.TitleToSlug(d.Title)
	d.Slug = slug
	s.docs[slug] = d
	return slug, nil
}

func (s *fakeService) Update(ctx context.Context, slug string, d dashboard.Dashboard) (string, error) {
	return s.Create(ctx, d)
}

func (s *fakeService) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	return "/upload/" + filename, nil
}

func (s *fakeService) List(ctx context.Context, tag string) ([]dashboard.Dashboard, error) {
	var out []dashboard.Dashboard
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out, nil
}

func (s *fakeService) Get(ctx context.Context, slug string) (dashboard.Dashboard, error) {
	d, ok := s.docs[slug]
	if !ok {
		return dashboard.Dashboard{}, meerkat.ErrNotFound
	}
	return d, nil
}

func (s *fakeService) Delete(ctx context.Context, slug string) error {
	delete(s.docs, slug)
	return nil
}

func (s *fakeService) Settings(ctx context.Context) (meerkat.Settings, error) {
	return meerkat.Settings{AppName: "Meerkat"}, nil
}

func (s *fakeService) SaveSettings(ctx context.Context, st meerkat.Settings) error { return nil }

func (s *fakeService) Events(ctx context.Context, stream string, fn func(meerkat.Event)) error {
	return nil
}

type fakeMonitor struct {
	fakeSnaps
	synced    [][]icinga.Selector
	refreshed []string
	stale     bool
	events    chan engine.Event
}

func (m *fakeMonitor) Sync(sels []icinga.Selector) { m.synced = append(m.synced, sels) }
func (m *fakeMonitor) Subscribe() <-chan engine.Event { return m.events }
func (m *fakeMonitor) RefreshAll() {}
func (m *fakeMonitor) ListPollers() []engine.PollerInfo { return nil }
func (m *fakeMonitor) Stale() bool { return m.stale }
func (m *fakeMonitor) StopAll() {}

func (m *fakeMonitor) RefreshObject(name string) int {
	m.refreshed = append(m.refreshed, name)
	return 1
}

func newTestApp(t *testing.T) (AppModel, *fakeService, *fakeMonitor) {
	t.Helper()
	svc := &fakeService{docs: map[string]dashboard.Dashboard{}}
	doc := watchedDoc()
	doc.Slug = "wall"
	svc.docs["wall"] = doc
	mon := &fakeMonitor{fakeSnaps: fakeSnaps{}, events: make(chan engine.Event)}
	live, _ := newTestLive()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m := NewAppModel(ctx, Options{
		Config:  config.DefaultConfig(),
		Service: svc,
		Monitor: mon,
		Live:    live,
		Logger:  zerolog.Nop(),
		Slug:    "wall",
	})
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return model.(AppModel), svc, mon
}

func step(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	model, _ := m.Update(msg)
	return model.(AppModel)
}

func TestAppLoadSyncsPollers(t *testing.T) {
	m, svc, mon := newTestApp(t)

	m = step(t, m, m.loadCmd("wall", false)())
	if m.doc == nil || m.doc.Slug != "wall" {
		t.Fatalf("doc = %+v, want wall", m.doc)
	}
	if len(mon.synced) == 0 {
		t.Fatal("loading a dashboard should sync pollers")
	}
	last := mon.synced[len(mon.synced)-1]
	want := svc.docs["wall"].Selectors()
	if len(last) != len(want) || last[0].Key() != want[0].Key() {
		t.Errorf("synced %v, want %v", last, want)
	}
}

func TestAppFailedReloadKeepsLastDocument(t *testing.T) {
	m, _, _ := newTestApp(t)
	m = step(t, m, m.loadCmd("wall", false)())

	m = step(t, m, dashboardMsg{err: errors.New("connection refused")})
	if m.doc == nil || m.doc.Slug != "wall" {
		t.Fatal("a failed reload should keep the last good document")
	}
	if m.viewer.Banner() != views.StaleBanner {
		t.Errorf("banner = %q, want stale banner", m.viewer.Banner())
	}
}

func TestAppIcingaEventsToggleBanner(t *testing.T) {
	m, _, _ := newTestApp(t)
	m = step(t, m, m.loadCmd("wall", false)())

	m = step(t, m, serverEventMsg{Stream: meerkat.UpdatesStream, Data: meerkat.IcingaError})
	if m.viewer.Banner() != views.StaleBanner {
		t.Errorf("after icinga-error banner = %q", m.viewer.Banner())
	}
	m = step(t, m, serverEventMsg{Stream: meerkat.UpdatesStream, Data: meerkat.IcingaSuccess})
	if m.viewer.Banner() != "" {
		t.Errorf("after icinga-success banner = %q", m.viewer.Banner())
	}
}

func TestAppStalePollersShowBanner(t *testing.T) {
	m, _, mon := newTestApp(t)
	m = step(t, m, m.loadCmd("wall", false)())

	mon.stale = true
	m = step(t, m, pollEventMsg{})
	if m.viewer.Banner() != views.StaleBanner {
		t.Errorf("banner = %q with stale pollers", m.viewer.Banner())
	}
}

func TestAppObjectEventRefreshes(t *testing.T) {
	m, _, mon := newTestApp(t)
	step(t, m, serverEventMsg{Stream: meerkat.IcingaStream, Data: "web01!http"})
	if len(mon.refreshed) != 1 || mon.refreshed[0] != "web01!http" {
		t.Errorf("refreshed = %v", mon.refreshed)
	}
}

func TestAppMuteKey(t *testing.T) {
	m, _, _ := newTestApp(t)
	m = step(t, m, m.loadCmd("wall", false)())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if !m.live.Muted() {
		t.Error("m should mute alerts")
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if m.live.Muted() {
		t.Error("second m should unmute")
	}
}

func TestAppEditSaveReturnsToViewer(t *testing.T) {
	m, svc, _ := newTestApp(t)
	m = step(t, m, m.loadCmd("wall", false)())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if m.state != StateEditor {
		t.Fatalf("state = %v, want editor", m.state)
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.state != StateViewer {
		t.Fatalf("state = %v after save, want viewer", m.state)
	}
	if got := svc.docs["wall"].Elements[0].Rect.X; got <= 0 {
		t.Errorf("saved rect X = %v, want the nudged position", got)
	}
}

func TestAppDeleteActiveDashboard(t *testing.T) {
	m, _, mon := newTestApp(t)
	m = step(t, m, m.loadCmd("wall", false)())

	m = step(t, m, deletedMsg{slug: "wall"})
	if m.doc != nil {
		t.Error("deleting the dashboard on screen should clear it")
	}
	if last := mon.synced[len(mon.synced)-1]; len(last) != 0 {
		t.Errorf("pollers still synced to %v", last)
	}
}
