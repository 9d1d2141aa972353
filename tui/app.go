package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/config"
	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/engine"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/internal/meerkat"
	"github.com/tonhe/meerkat/tui/components"
	"github.com/tonhe/meerkat/tui/keys"
	"github.com/tonhe/meerkat/tui/styles"
	"github.com/tonhe/meerkat/tui/views"
)

// AppState represents the current screen/view of the application.
type AppState int

const (
	StateViewer AppState = iota
	StateSwitcher
	StateDetail
	StateEditor
	StateSettings
)

// Service is the Meerkat server as the UI uses it. *meerkat.Client
// satisfies it.
type Service interface {
	views.EditorStore
	List(ctx context.Context, tag string) ([]dashboard.Dashboard, error)
	Get(ctx context.Context, slug string) (dashboard.Dashboard, error)
	Delete(ctx context.Context, slug string) error
	Settings(ctx context.Context) (meerkat.Settings, error)
	SaveSettings(ctx context.Context, s meerkat.Settings) error
	Events(ctx context.Context, stream string, fn func(meerkat.Event)) error
}

// Monitor runs the pollers behind the elements on screen.
// *engine.Manager satisfies it.
type Monitor interface {
	views.Snapshots
	Sync(sels []icinga.Selector)
	Subscribe() <-chan engine.Event
	RefreshAll()
	RefreshObject(objectName string) int
	ListPollers() []engine.PollerInfo
	Stale() bool
	StopAll()
}

// Options wires the app to its collaborators.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Service    Service
	Monitor    Monitor
	Live       *LiveSession
	Logger     zerolog.Logger
	Version    string
	// Slug is the dashboard opened at start; empty opens the switcher.
	Slug string
}

// TickMsg triggers a periodic UI refresh to pick up new poll data.
type TickMsg time.Time

type (
	dashboardsMsg struct {
		list []dashboard.Dashboard
		err  error
	}
	dashboardMsg struct {
		doc  dashboard.Dashboard
		edit bool
		err  error
	}
	deletedMsg struct {
		slug string
		err  error
	}
	settingsMsg struct {
		settings meerkat.Settings
		err      error
	}
	settingsSavedMsg struct{ err error }
	serverEventMsg   meerkat.Event
	pollEventMsg     engine.Event
)

// AppModel is the root Bubble Tea model that manages all views and state.
type AppModel struct {
	ctx     context.Context
	state   AppState
	theme   styles.Theme
	config  *config.Config
	cfgPath string
	service Service
	monitor Monitor
	live    *LiveSession
	log     zerolog.Logger
	version string

	viewer   views.ViewerView
	switcher views.SwitcherView
	detail   views.DetailView
	editor   views.EditorView
	settings views.SettingsView
	help     views.HelpView

	doc         *dashboard.Dashboard
	detailIndex int
	appName     string
	icingaDown  bool
	loadFailed  bool
	message     string
	startSlug   string

	serverEvents chan meerkat.Event
	pollEvents   <-chan engine.Event

	width  int
	height int
}

// NewAppModel creates a new AppModel. Server event subscriptions run
// until ctx is cancelled.
func NewAppModel(ctx context.Context, opts Options) AppModel {
	theme := styles.Resolve(opts.Config.Theme)
	m := AppModel{
		ctx:          ctx,
		state:        StateViewer,
		config:       opts.Config,
		cfgPath:      opts.ConfigPath,
		service:      opts.Service,
		monitor:      opts.Monitor,
		live:         opts.Live,
		log:          opts.Logger.With().Str("component", "tui").Logger(),
		version:      opts.Version,
		startSlug:    opts.Slug,
		detailIndex:  -1,
		serverEvents: make(chan meerkat.Event, 64),
		pollEvents:   opts.Monitor.Subscribe(),
	}
	m.applyTheme(theme)
	m.subscribe(meerkat.UpdatesStream)
	m.subscribe(meerkat.IcingaStream)
	return m
}

// applyTheme rebuilds every view in theme, keeping their data.
func (m *AppModel) applyTheme(theme styles.Theme) {
	m.theme = theme
	m.viewer = views.NewViewerView(theme)
	m.viewer.SetSnapshots(m.monitor)
	m.viewer.SetDashboard(m.doc)
	m.switcher = views.NewSwitcherView(theme)
	m.detail = views.NewDetailView(theme)
	m.editor = views.NewEditorView(theme, m.service, m.config.RequestTimeout)
	m.editor.SetSnapshots(m.monitor)
	m.help = views.NewHelpView(theme)
	m.resize()
}

// subscribe forwards one server event stream into the UI.
func (m AppModel) subscribe(stream string) {
	ch := m.serverEvents
	go func() {
		err := m.service.Events(m.ctx, stream, func(ev meerkat.Event) {
			select {
			case ch <- ev:
			case <-m.ctx.Done():
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			m.log.Warn().Err(err).Str("stream", stream).Msg("event stream ended")
		}
	}()
}

// Init returns the initial commands: the tick loop, event listeners and
// the first load.
func (m AppModel) Init() tea.Cmd {
	first := m.listCmd("")
	if m.startSlug != "" {
		first = m.loadCmd(m.startSlug, false)
	}
	return tea.Batch(tickCmd(), m.waitServerEvent(), m.waitPollEvent(), m.loadSettingsCmd(), first)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m AppModel) waitServerEvent() tea.Cmd {
	ch := m.serverEvents
	return func() tea.Msg {
		return serverEventMsg(<-ch)
	}
}

func (m AppModel) waitPollEvent() tea.Cmd {
	ch := m.pollEvents
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return pollEventMsg(ev)
	}
}

func (m AppModel) call() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.config.RequestTimeout)
}

func (m AppModel) listCmd(tag string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.call()
		defer cancel()
		list, err := m.service.List(ctx, tag)
		return dashboardsMsg{list: list, err: err}
	}
}

func (m AppModel) loadCmd(slug string, edit bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.call()
		defer cancel()
		doc, err := m.service.Get(ctx, slug)
		return dashboardMsg{doc: doc, edit: edit, err: err}
	}
}

func (m AppModel) deleteCmd(slug string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.call()
		defer cancel()
		return deletedMsg{slug: slug, err: m.service.Delete(ctx, slug)}
	}
}

func (m AppModel) loadSettingsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.call()
		defer cancel()
		s, err := m.service.Settings(ctx)
		return settingsMsg{settings: s, err: err}
	}
}

func (m AppModel) saveSettingsCmd(s meerkat.Settings) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.call()
		defer cancel()
		return settingsSavedMsg{err: m.service.SaveSettings(ctx, s)}
	}
}

// show makes doc the dashboard on screen and points the pollers at it.
func (m *AppModel) show(doc dashboard.Dashboard) {
	sameDoc := m.doc != nil && m.doc.Slug == doc.Slug
	m.doc = &doc
	m.viewer.SetDashboard(m.doc)
	m.monitor.Sync(doc.Selectors())
	if m.live != nil && !sameDoc {
		m.live.Load(m.doc)
	}
	m.loadFailed = false
}

func (m *AppModel) resize() {
	body := max(m.height-3, 1)
	m.viewer.SetSize(m.width, body)
	m.switcher.SetSize(m.width, body)
	m.detail.SetSize(m.width, body)
	m.editor.SetSize(m.width, body)
	m.settings.SetSize(m.width, body)
	m.help.SetSize(m.width, body)
}

func (m *AppModel) refreshBanner() {
	if m.icingaDown || m.loadFailed || m.monitor.Stale() {
		m.viewer.SetBanner(views.StaleBanner)
		return
	}
	m.viewer.SetBanner("")
}

func (m *AppModel) refreshDetail() {
	if m.doc == nil || m.detailIndex < 0 || m.detailIndex >= len(m.doc.Elements) {
		return
	}
	sel := m.doc.Selector(m.detailIndex)
	var (
		snap   engine.Snapshot
		polled bool
	)
	if !sel.Idle() {
		s, err := m.monitor.GetSnapshot(sel.Key())
		snap, polled = s, err == nil
	}
	m.detail.SetElement(m.doc.Elements[m.detailIndex], sel, snap, polled)
}

func (m *AppModel) observe() {
	if m.live == nil || m.doc == nil || m.state == StateEditor {
		return
	}
	m.live.Observe(*m.doc, m.monitor)
}

func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.monitor.StopAll()
	if m.live != nil {
		if err := m.live.Close(); err != nil {
			m.log.Debug().Err(err).Msg("close live session")
		}
	}
	return m, tea.Quit
}

// Update handles messages and dispatches to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case TickMsg:
		now := time.Time(msg)
		m.viewer.SetNow(now)
		m.editor.SetNow(now)
		m.detail.SetNow(now)
		m.observe()
		m.refreshBanner()
		m.refreshDetail()
		return m, tickCmd()

	case pollEventMsg:
		m.observe()
		m.refreshBanner()
		return m, m.waitPollEvent()

	case serverEventMsg:
		return m.handleServerEvent(meerkat.Event(msg))

	case dashboardsMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("list dashboards")
			m.switcher.SetError(msg.err)
		} else {
			active := ""
			if m.doc != nil {
				active = m.doc.Slug
			}
			m.switcher.SetDashboards(msg.list, active)
		}
		if m.doc == nil && m.state == StateViewer {
			m.state = StateSwitcher
		}
		return m, nil

	case dashboardMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("load dashboard")
			m.message = msg.err.Error()
			// keep showing the last good document
			m.loadFailed = m.doc != nil
			m.refreshBanner()
			return m, nil
		}
		if msg.edit {
			m.editor.Load(msg.doc)
			m.monitor.Sync(msg.doc.Selectors())
			m.state = StateEditor
			return m, nil
		}
		m.show(msg.doc)
		m.message = ""
		if m.state == StateSwitcher {
			m.state = StateViewer
		}
		m.refreshBanner()
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.message = msg.err.Error()
			return m, nil
		}
		m.message = "Deleted " + msg.slug
		if m.doc != nil && m.doc.Slug == msg.slug {
			m.doc = nil
			m.viewer.SetDashboard(nil)
			m.monitor.Sync(nil)
			if m.live != nil {
				m.live.Load(nil)
			}
		}
		return m, m.listCmd(m.switcher.Tag())

	case settingsMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Msg("load settings")
			return m, nil
		}
		m.appName = msg.settings.AppName
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.message = "Saving app name failed: " + msg.err.Error()
		}
		return m, nil

	case tea.MouseMsg:
		// the header takes the first row
		msg.Y--
		switch m.state {
		case StateViewer:
			var open bool
			m.viewer, _, open = m.viewer.Update(msg)
			if open {
				return m.openDetail()
			}
		case StateEditor:
			var cmd tea.Cmd
			var action views.EditorAction
			m.editor, cmd, action = m.editor.Update(msg)
			return m.afterEditor(cmd, action)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.help.IsVisible() {
			if key.Matches(msg, keys.DefaultKeyMap.Help) || key.Matches(msg, keys.DefaultKeyMap.Escape) {
				m.help.Toggle()
			}
			return m, nil
		}
		return m.handleKey(msg)
	}

	// textinput blink and similar
	switch m.state {
	case StateEditor:
		var cmd tea.Cmd
		var action views.EditorAction
		m.editor, cmd, action = m.editor.Update(msg)
		return m.afterEditor(cmd, action)
	case StateSettings:
		var cmd tea.Cmd
		m.settings, cmd, _ = m.settings.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m AppModel) handleServerEvent(ev meerkat.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitServerEvent()}
	switch ev.Kind() {
	case meerkat.KindReloadAll:
		if m.doc != nil && m.state != StateEditor {
			cmds = append(cmds, m.loadCmd(m.doc.Slug, false))
		}
		if m.state == StateSwitcher {
			cmds = append(cmds, m.listCmd(m.switcher.Tag()))
		}
	case meerkat.KindReloadDashboard:
		if m.doc != nil && m.doc.Slug == ev.Data && m.state != StateEditor {
			cmds = append(cmds, m.loadCmd(ev.Data, false))
		}
	case meerkat.KindIcingaError:
		m.icingaDown = true
	case meerkat.KindIcingaSuccess:
		m.icingaDown = false
	case meerkat.KindObject:
		if n := m.monitor.RefreshObject(ev.Data); n > 0 {
			m.log.Debug().Str("object", ev.Data).Int("pollers", n).Msg("push refresh")
		}
	case meerkat.KindHeartbeat:
	}
	m.refreshBanner()
	return m, tea.Batch(cmds...)
}

func (m AppModel) openDetail() (tea.Model, tea.Cmd) {
	i := m.viewer.Focused()
	if m.doc == nil || i < 0 || i >= len(m.doc.Elements) {
		return m, nil
	}
	m.detailIndex = i
	m.refreshDetail()
	m.state = StateDetail
	return m, nil
}

func (m AppModel) openEditor(doc dashboard.Dashboard) (tea.Model, tea.Cmd) {
	m.editor.Load(doc)
	m.monitor.Sync(doc.Selectors())
	m.state = StateEditor
	return m, nil
}

func (m AppModel) afterEditor(cmd tea.Cmd, action views.EditorAction) (tea.Model, tea.Cmd) {
	switch action {
	case views.EditorActionSaved:
		doc := m.editor.Session().Doc()
		m.show(doc)
		m.message = "Saved " + doc.Title
		m.state = StateViewer
	case views.EditorActionClose:
		m.state = StateViewer
		if m.doc != nil {
			m.monitor.Sync(m.doc.Selectors())
		} else {
			m.monitor.Sync(nil)
			m.state = StateSwitcher
			return m, tea.Batch(cmd, m.listCmd(m.switcher.Tag()))
		}
	}
	return m, cmd
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := keys.DefaultKeyMap
	switch m.state {
	case StateViewer:
		switch {
		case key.Matches(msg, km.Quit):
			return m.quit()
		case key.Matches(msg, km.Help):
			m.help.Toggle()
			return m, nil
		case key.Matches(msg, km.Dashboard):
			m.state = StateSwitcher
			return m, m.listCmd(m.switcher.Tag())
		case key.Matches(msg, km.Edit):
			if m.doc == nil {
				return m, nil
			}
			return m.openEditor(*m.doc)
		case key.Matches(msg, km.New):
			return m.openEditor(dashboard.Dashboard{Title: "New Dashboard"})
		case key.Matches(msg, km.Settings):
			m.settings = views.NewSettingsView(m.theme, m.config, m.cfgPath, m.appName)
			m.settings.SetSize(m.width, max(m.height-3, 1))
			m.state = StateSettings
			return m, nil
		case key.Matches(msg, km.Refresh):
			m.monitor.RefreshAll()
			if m.doc != nil {
				return m, m.loadCmd(m.doc.Slug, false)
			}
			return m, nil
		case key.Matches(msg, km.Mute):
			if m.live != nil {
				m.live.SetMuted(!m.live.Muted(), m.doc)
			}
			return m, nil
		}
		var open bool
		m.viewer, _, open = m.viewer.Update(msg)
		if open {
			return m.openDetail()
		}
		return m, nil

	case StateSwitcher:
		var cmd tea.Cmd
		var action views.SwitcherAction
		m.switcher, cmd, action = m.switcher.Update(msg)
		slug := ""
		if item := m.switcher.SelectedItem(); item != nil {
			slug = item.Slug
		}
		switch action {
		case views.ActionClose:
			m.state = StateViewer
		case views.ActionSwitch:
			return m, m.loadCmd(slug, false)
		case views.ActionNew:
			return m.openEditor(dashboard.Dashboard{Title: "New Dashboard"})
		case views.ActionEdit:
			return m, m.loadCmd(slug, true)
		case views.ActionDelete:
			return m, m.deleteCmd(slug)
		case views.ActionFilter:
			return m, m.listCmd(m.switcher.Tag())
		}
		return m, cmd

	case StateDetail:
		var back bool
		m.detail, _, back = m.detail.Update(msg)
		if back {
			m.detailIndex = -1
			m.state = StateViewer
		}
		return m, nil

	case StateEditor:
		var cmd tea.Cmd
		var action views.EditorAction
		m.editor, cmd, action = m.editor.Update(msg)
		return m.afterEditor(cmd, action)

	case StateSettings:
		var cmd tea.Cmd
		var action views.SettingsAction
		m.settings, cmd, action = m.settings.Update(msg)
		switch action {
		case views.SettingsClose:
			m.state = StateViewer
		case views.SettingsSaved:
			var cmds []tea.Cmd
			if name := m.settings.AppName(); name != m.appName {
				m.appName = name
				cmds = append(cmds, m.saveSettingsCmd(meerkat.Settings{AppName: name}))
			}
			if t, ok := styles.Lookup(m.settings.SavedTheme); ok {
				m.applyTheme(t)
			}
			m.message = "Settings saved"
			m.state = StateViewer
			return m, tea.Batch(cmds...)
		}
		return m, cmd
	}
	return m, nil
}

func (m AppModel) counts() components.StateCounts {
	var c components.StateCounts
	if m.doc == nil {
		return c
	}
	for i, el := range m.doc.Elements {
		if !el.Type.Monitored() {
			continue
		}
		sel := m.doc.Selector(i)
		if sel.Idle() {
			continue
		}
		state := icinga.StateNone
		if snap, err := m.monitor.GetSnapshot(sel.Key()); err == nil {
			state = snap.DisplayState()
		}
		c.Add(state)
	}
	return c
}

func (m AppModel) hints() []components.KeyHint {
	switch m.state {
	case StateViewer:
		return []components.KeyHint{
			{Key: "d", Desc: "dashboards"}, {Key: "e", Desc: "edit"}, {Key: "n", Desc: "new"},
			{Key: "enter", Desc: "detail"}, {Key: "m", Desc: "mute"}, {Key: "r", Desc: "refresh"},
			{Key: "s", Desc: "settings"}, {Key: "?", Desc: "help"}, {Key: "q", Desc: "quit"},
		}
	case StateDetail:
		return []components.KeyHint{{Key: "esc", Desc: "back"}}
	case StateEditor:
		return []components.KeyHint{{Key: "ctrl+s", Desc: "save"}, {Key: "esc", Desc: "back"}, {Key: "ctrl+c", Desc: "quit"}}
	}
	return []components.KeyHint{{Key: "esc", Desc: "back"}, {Key: "ctrl+c", Desc: "quit"}}
}

// View renders the full application UI by composing header, body, and status.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	mode := "LIVE"
	switch m.state {
	case StateEditor:
		mode = "EDIT"
	case StateSettings:
		mode = "SETTINGS"
	}
	info := components.HeaderInfo{
		AppName: m.appName,
		Mode:    mode,
		Stale:   m.viewer.Banner() != "",
		Pollers: len(m.monitor.ListPollers()),
		Version: m.version,
	}
	if m.live != nil {
		info.Muted = m.live.Muted() || (m.doc != nil && m.doc.GlobalMute)
	}
	if m.state == StateEditor {
		info.Dashboard = m.editor.Session().Doc().Title
	} else if m.doc != nil {
		info.Dashboard = m.doc.Title
	}
	header := components.RenderHeader(m.theme, info, m.width)

	var body string
	switch {
	case m.help.IsVisible():
		body = m.help.View()
	case m.state == StateSwitcher:
		body = m.switcher.View()
	case m.state == StateDetail:
		body = m.detail.View()
	case m.state == StateEditor:
		body = m.editor.View()
	case m.state == StateSettings:
		body = m.settings.View()
	default:
		body = m.viewer.View()
	}

	var lastPoll time.Time
	for _, p := range m.monitor.ListPollers() {
		if p.LastPoll.After(lastPoll) {
			lastPoll = p.LastPoll
		}
	}
	statusBar := components.RenderStatusBar(m.theme, lastPoll, m.counts(), m.message, m.hints(), m.width)

	bodyStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(max(m.height-3, 1)).
		MaxHeight(max(m.height-3, 1)).
		Background(m.theme.Base00).
		Foreground(m.theme.Base05)

	return lipgloss.JoinVertical(lipgloss.Left, header, bodyStyle.Render(body), statusBar)
}
