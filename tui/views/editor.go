package views

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/gesture"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/tui/components"
	"github.com/tonhe/meerkat/tui/elements"
	"github.com/tonhe/meerkat/tui/keys"
	"github.com/tonhe/meerkat/tui/styles"
)

// EditorAction describes what the app should do after an editor update.
type EditorAction int

const (
	// EditorActionNone means continue in the editor.
	EditorActionNone EditorAction = iota
	// EditorActionClose means the user left without saving.
	EditorActionClose
	// EditorActionSaved means the dashboard was saved; Session has the slug.
	EditorActionSaved
)

// EditorStore persists the edited dashboard and its uploaded media.
// *meerkat.Client satisfies it.
type EditorStore interface {
	dashboard.Writer
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type editorMode int

const (
	modeCanvas editorMode = iota
	modeTypePicker
	modeFields
	modeFieldEdit
	modeDocument
	modeDocumentEdit
	modeConfirmExit
)

// editorInfoLines is the height of the info bar below the canvas.
const editorInfoLines = 2

// rotationStep is how far < and > turn an element.
const rotationStep = math.Pi / 4

// Document option rows.
const (
	docTitle = iota
	docTags
	docBackground
	docGlobalMute
	docVariables
	docSoundsStart
)

var docSoundStates = []icinga.State{
	icinga.StateOK, icinga.StateWarning, icinga.StateCritical,
	icinga.StateUnknown, icinga.StateUp, icinga.StateDown,
}

// EditorView edits one dashboard on a canvas. Elements are selected,
// dragged, resized and rotated with the mouse or the keyboard; their
// options are edited in a field list.
type EditorView struct {
	theme   styles.Theme
	sty     *styles.Styles
	store   EditorStore
	snaps   Snapshots
	session *dashboard.Session
	drag    *gesture.Controller
	timeout time.Duration
	now     time.Time

	width  int
	height int

	mode     editorMode
	changing bool // type picker replaces the selected element's type
	typeCur  int
	fieldCur int
	docCur   int
	input    textinput.Model
	status   string
	err      string
}

// NewEditorView creates an EditorView that saves through store. Calls to
// store are bounded by timeout.
func NewEditorView(theme styles.Theme, store EditorStore, timeout time.Duration) EditorView {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 48
	return EditorView{
		theme:   theme,
		sty:     styles.NewStyles(theme),
		store:   store,
		session: dashboard.NewSession(dashboard.Dashboard{Title: "New Dashboard"}),
		drag:    gesture.NewController(1),
		timeout: timeout,
		input:   ti,
	}
}

// Load starts editing d. A dashboard without a slug is created on save.
// Structural problems, such as an element type this build does not know,
// are reported straight away rather than at save time.
func (e *EditorView) Load(d dashboard.Dashboard) {
	e.session = dashboard.NewSession(d)
	e.mode = modeCanvas
	e.err = ""
	e.status = ""
	if err := dashboard.Validate(d); err != nil {
		e.err = err.Error()
	}
	if len(d.Elements) > 0 {
		e.session.Select(0)
	}
}

// Session is the editing session in progress.
func (e EditorView) Session() *dashboard.Session {
	return e.session
}

// SetSnapshots sets where element states come from so the canvas shows
// live colours while editing.
func (e *EditorView) SetSnapshots(s Snapshots) {
	e.snaps = s
}

// SetNow sets the time clocks and tickers render at.
func (e *EditorView) SetNow(t time.Time) {
	e.now = t
}

// SetSize updates the available dimensions for the editor view.
func (e *EditorView) SetSize(width, height int) {
	e.width = width
	e.height = height
}

func (e EditorView) canvasSize() gesture.Size {
	return gesture.Size{W: float64(e.width), H: float64(max(e.height-editorInfoLines, 0))}
}

// Update handles messages for the editor and dispatches by mode.
func (e EditorView) Update(msg tea.Msg) (EditorView, tea.Cmd, EditorAction) {
	switch e.mode {
	case modeCanvas:
		return e.updateCanvas(msg)
	case modeTypePicker:
		return e.updateTypePicker(msg)
	case modeFields:
		return e.updateFields(msg)
	case modeFieldEdit:
		return e.updateFieldEdit(msg)
	case modeDocument:
		return e.updateDocument(msg)
	case modeDocumentEdit:
		return e.updateDocumentEdit(msg)
	case modeConfirmExit:
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "y" {
				return e, nil, EditorActionClose
			}
			e.mode = modeCanvas
		}
	}
	return e, nil, EditorActionNone
}

// --- Canvas mode ---

func (e EditorView) updateCanvas(msg tea.Msg) (EditorView, tea.Cmd, EditorAction) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		e.handleMouse(msg)
		return e, nil, EditorActionNone
	case tea.KeyMsg:
		return e.handleCanvasKey(msg)
	}
	return e, nil, EditorActionNone
}

// grabKind picks the manipulation for a press at x, y on element i: the
// bottom right corner resizes, the top right corner rotates.
func (e EditorView) grabKind(i, x, y int) gesture.Kind {
	_, sel, ok := e.session.Selected()
	if !ok || sel != i {
		return gesture.Move
	}
	c := components.Place(e.session.Doc().Elements[i].Rect, e.canvasSize())
	right, bottom := c.X+c.W-1, c.Y+c.H-1
	switch {
	case x == right && y == bottom:
		return gesture.Resize
	case x == right && y == c.Y && c.H > 1:
		return gesture.Rotate
	}
	return gesture.Move
}

func (e *EditorView) handleMouse(msg tea.MouseMsg) {
	size := e.canvasSize()
	doc := e.session.Doc()
	at := gesture.Point{X: float64(msg.X), Y: float64(msg.Y)}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		hit := components.HitTest(doc.Elements, size, msg.X, msg.Y)
		if hit < 0 {
			e.session.Select(-1)
			return
		}
		kind := e.grabKind(hit, msg.X, msg.Y)
		e.session.Select(hit)
		e.drag.Begin(kind, hit, gesture.BoxFromRect(doc.Elements[hit].Rect, size), at)

	case tea.MouseActionMotion:
		if e.drag.Active() {
			if u, ok := e.drag.Move(at, size); ok {
				e.session.Dispatch(u.Action())
			}
			return
		}
		e.session.Highlight(components.HitTest(doc.Elements, size, msg.X, msg.Y))

	case tea.MouseActionRelease:
		e.drag.End()
	}
}

// nudge runs a one-step drag of kind on the selected element.
func (e *EditorView) nudge(kind gesture.Kind, dx, dy float64) {
	el, i, ok := e.session.Selected()
	if !ok {
		return
	}
	size := e.canvasSize()
	box := gesture.BoxFromRect(el.Rect, size)
	start := box.Center()
	e.drag.Begin(kind, i, box, start)
	if u, ok := e.drag.Move(gesture.Point{X: start.X + dx, Y: start.Y + dy}, size); ok {
		e.session.Dispatch(u.Action())
	}
	e.drag.End()
}

// normalizeRotation keeps radians in (-π, π].
func normalizeRotation(r float64) float64 {
	r = math.Mod(r, 2*math.Pi)
	if r > math.Pi {
		r -= 2 * math.Pi
	}
	if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}

func (e EditorView) handleCanvasKey(msg tea.KeyMsg) (EditorView, tea.Cmd, EditorAction) {
	km := keys.DefaultKeyMap
	el, i, selected := e.session.Selected()
	e.err = ""

	switch {
	case key.Matches(msg, km.Save):
		e.save()
		if e.err == "" {
			return e, nil, EditorActionSaved
		}

	case key.Matches(msg, km.Escape):
		if e.session.Dirty() {
			e.mode = modeConfirmExit
			return e, nil, EditorActionNone
		}
		return e, nil, EditorActionClose

	case key.Matches(msg, km.Grow), key.Matches(msg, km.Shrink):
		switch msg.String() {
		case "shift+right":
			e.nudge(gesture.Resize, 1, 0)
		case "shift+left":
			e.nudge(gesture.Resize, -1, 0)
		case "shift+down":
			e.nudge(gesture.Resize, 0, 1)
		case "shift+up":
			e.nudge(gesture.Resize, 0, -1)
		}

	case key.Matches(msg, km.Up):
		e.nudge(gesture.Move, 0, -1)
	case key.Matches(msg, km.Down):
		e.nudge(gesture.Move, 0, 1)
	case key.Matches(msg, km.Left):
		e.nudge(gesture.Move, -1, 0)
	case key.Matches(msg, km.Right):
		e.nudge(gesture.Move, 1, 0)

	case key.Matches(msg, km.RotateCW):
		if selected {
			e.session.Dispatch(dashboard.UpdateRotation{Index: i, Rotation: normalizeRotation(el.Rotation + rotationStep)})
		}
	case key.Matches(msg, km.RotateCCW):
		if selected {
			e.session.Dispatch(dashboard.UpdateRotation{Index: i, Rotation: normalizeRotation(el.Rotation - rotationStep)})
		}

	case key.Matches(msg, km.Raise):
		if selected && i < len(e.session.Doc().Elements)-1 {
			e.session.Dispatch(dashboard.ReorderElements{Source: i, Destination: i + 1})
		}
	case key.Matches(msg, km.Lower):
		if selected && i > 0 {
			e.session.Dispatch(dashboard.ReorderElements{Source: i, Destination: i - 1})
		}

	case key.Matches(msg, km.Tab):
		if n := len(e.session.Doc().Elements); n > 0 {
			e.session.Select((i + 1) % n)
		}
	case key.Matches(msg, km.ShiftTab):
		if n := len(e.session.Doc().Elements); n > 0 {
			if i <= 0 {
				i = n
			}
			e.session.Select(i - 1)
		}

	case key.Matches(msg, km.Add):
		e.changing = false
		e.typeCur = 0
		e.mode = modeTypePicker
	case key.Matches(msg, km.CycleType):
		if selected {
			e.changing = true
			e.typeCur = typeIndex(el.Type)
			e.mode = modeTypePicker
		}
	case key.Matches(msg, km.Delete):
		if selected {
			e.session.Dispatch(dashboard.DeleteElement{Index: i})
		}
	case key.Matches(msg, km.Duplicate):
		if selected {
			e.session.Dispatch(dashboard.DuplicateElement{Element: el})
		}

	case key.Matches(msg, km.Fields):
		if selected {
			e.fieldCur = 0
			e.mode = modeFields
		}
	case key.Matches(msg, km.Document):
		e.docCur = 0
		e.mode = modeDocument
	}
	return e, nil, EditorActionNone
}

func typeIndex(t dashboard.ElementType) int {
	for i, k := range dashboard.ElementTypes() {
		if k == t {
			return i
		}
	}
	return 0
}

// save validates the document and writes it through the store.
func (e *EditorView) save() {
	if err := dashboard.Validate(e.session.Doc()); err != nil {
		e.err = err.Error()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	if err := e.session.Save(ctx, e.store); err != nil {
		e.err = err.Error()
		return
	}
	e.status = "Saved " + e.session.Slug()
}

// upload sends a local file to the server and returns its URL. Values
// that do not name a local file are returned unchanged.
func (e *EditorView) upload(value string) (string, error) {
	if value == "" || strings.Contains(value, "://") || strings.HasPrefix(value, "/upload") {
		return value, nil
	}
	path := value
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return value, nil
		}
		return "", err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	url, err := e.store.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	return url, nil
}

// --- Type picker ---

func (e EditorView) updateTypePicker(msg tea.Msg) (EditorView, tea.Cmd, EditorAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, EditorActionNone
	}
	types := dashboard.ElementTypes()
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Escape):
		e.mode = modeCanvas
	case key.Matches(km, keys.DefaultKeyMap.Up):
		if e.typeCur > 0 {
			e.typeCur--
		}
	case key.Matches(km, keys.DefaultKeyMap.Down):
		if e.typeCur < len(types)-1 {
			e.typeCur++
		}
	case key.Matches(km, keys.DefaultKeyMap.Enter):
		t := types[e.typeCur]
		if e.changing {
			if _, i, ok := e.session.Selected(); ok {
				e.session.Dispatch(dashboard.ChangeType{Index: i, Type: t})
			}
		} else {
			e.session.Dispatch(dashboard.AddElement{Type: t})
		}
		e.mode = modeCanvas
	}
	return e, nil, EditorActionNone
}

// --- Element fields ---

// elementFields is the selected element's title row followed by its
// type's option fields.
func (e EditorView) elementFields() []elements.Field {
	el, _, ok := e.session.Selected()
	if !ok {
		return nil
	}
	return append([]elements.Field{{Key: "", Label: "Title", Kind: elements.FieldText}}, elements.Fields(el.Type)...)
}

func (e EditorView) updateFields(msg tea.Msg) (EditorView, tea.Cmd, EditorAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, EditorActionNone
	}
	el, i, selected := e.session.Selected()
	fields := e.elementFields()
	if !selected || len(fields) == 0 {
		e.mode = modeCanvas
		return e, nil, EditorActionNone
	}
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Escape):
		e.mode = modeCanvas
	case key.Matches(km, keys.DefaultKeyMap.Up):
		if e.fieldCur > 0 {
			e.fieldCur--
		}
	case key.Matches(km, keys.DefaultKeyMap.Down):
		if e.fieldCur < len(fields)-1 {
			e.fieldCur++
		}
	case key.Matches(km, keys.DefaultKeyMap.Enter):
		f := fields[e.fieldCur]
		switch f.Kind {
		case elements.FieldBool:
			e.session.Dispatch(dashboard.UpdateOptionsAction{Index: i, Patch: dashboard.Options{f.Key: !el.Options.Bool(f.Key)}})
		case elements.FieldChoice:
			e.session.Dispatch(dashboard.UpdateOptionsAction{Index: i, Patch: dashboard.Options{f.Key: nextChoice(f.Choices, el.Options.String(f.Key))}})
		default:
			value := el.Title
			if f.Key != "" {
				value = f.Value(el.Options)
			}
			e.input.SetValue(value)
			e.input.Focus()
			e.err = ""
			e.mode = modeFieldEdit
			return e, textinput.Blink, EditorActionNone
		}
	}
	return e, nil, EditorActionNone
}

func nextChoice(choices []string, cur string) string {
	if len(choices) == 0 {
		return cur
	}
	for i, c := range choices {
		if c == cur {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

func (e EditorView) updateFieldEdit(msg tea.Msg) (EditorView, tea.Cmd, EditorAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, EditorActionNone
	}
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Escape):
		e.input.Blur()
		e.mode = modeFields
		return e, nil, EditorActionNone
	case key.Matches(km, keys.DefaultKeyMap.Enter):
		el, i, ok := e.session.Selected()
		fields := e.elementFields()
		if !ok || e.fieldCur >= len(fields) {
			e.mode = modeCanvas
			return e, nil, EditorActionNone
		}
		f := fields[e.fieldCur]
		raw := e.input.Value()
		if f.Key == "" {
			el.Title = strings.TrimSpace(raw)
			e.session.Dispatch(dashboard.UpdateElement{Index: i, Element: el})
		} else {
			if f.Kind == elements.FieldUpload {
				url, err := e.upload(strings.TrimSpace(raw))
				if err != nil {
					e.err = err.Error()
					return e, nil, EditorActionNone
				}
				raw = url
			}
			patch, err := f.Patch(raw)
			if err != nil {
				e.err = err.Error()
				return e, nil, EditorActionNone
			}
			e.session.Dispatch(dashboard.UpdateOptionsAction{Index: i, Patch: patch})
		}
		e.err = ""
		e.input.Blur()
		e.mode = modeFields
		return e, nil, EditorActionNone
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return e, cmd, EditorActionNone
}

// --- Document options ---

func docRowCount() int {
	return docSoundsStart + len(docSoundStates)
}

func docRowLabel(row int) string {
	switch row {
	case docTitle:
		return "Title"
	case docTags:
		return "Tags"
	case docBackground:
		return "Background"
	case docGlobalMute:
		return "Mute All Alerts"
	case docVariables:
		return "Variables"
	}
	st := docSoundStates[row-docSoundsStart]
	return strings.ToUpper(string(st[:1])) + string(st[1:]) + " Sound"
}

func docRowValue(d dashboard.Dashboard, row int) string {
	switch row {
	case docTitle:
		return d.Title
	case docTags:
		return strings.Join(d.Tags, ", ")
	case docBackground:
		return d.Background
	case docGlobalMute:
		return fmt.Sprintf("%t", d.GlobalMute)
	case docVariables:
		return FormatVariables(d.Variables)
	}
	return d.Sounds().For(docSoundStates[row-docSoundsStart])
}

// FormatVariables renders dashboard variables as "a=1, b=2".
func FormatVariables(vars map[string]string) string {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + "=" + vars[k]
	}
	return strings.Join(parts, ", ")
}

// ParseVariables reads the FormatVariables form back.
func ParseVariables(s string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("variable %q must look like name=value", part)
		}
		vars[k] = strings.TrimSpace(v)
	}
	return vars, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (e EditorView) updateDocument(msg tea.Msg) (EditorView, tea.Cmd, EditorAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, EditorActionNone
	}
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Escape):
		e.mode = modeCanvas
	case key.Matches(km, keys.DefaultKeyMap.Up):
		if e.docCur > 0 {
			e.docCur--
		}
	case key.Matches(km, keys.DefaultKeyMap.Down):
		if e.docCur < docRowCount()-1 {
			e.docCur++
		}
	case key.Matches(km, keys.DefaultKeyMap.Enter):
		doc := e.session.Doc()
		if e.docCur == docGlobalMute {
			e.session.Dispatch(dashboard.SetGlobalMute{Mute: !doc.GlobalMute})
			return e, nil, EditorActionNone
		}
		e.input.SetValue(docRowValue(doc, e.docCur))
		e.input.Focus()
		e.err = ""
		e.mode = modeDocumentEdit
		return e, textinput.Blink, EditorActionNone
	}
	return e, nil, EditorActionNone
}

func (e EditorView) updateDocumentEdit(msg tea.Msg) (EditorView, tea.Cmd, EditorAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, EditorActionNone
	}
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Escape):
		e.input.Blur()
		e.mode = modeDocument
		return e, nil, EditorActionNone
	case key.Matches(km, keys.DefaultKeyMap.Enter):
		raw := strings.TrimSpace(e.input.Value())
		switch e.docCur {
		case docTitle:
			if raw == "" {
				e.err = "Title is required"
				return e, nil, EditorActionNone
			}
			e.session.Dispatch(dashboard.SetTitle{Title: raw})
		case docTags:
			e.session.Dispatch(dashboard.SetTags{Tags: splitTags(raw)})
		case docBackground:
			url, err := e.upload(raw)
			if err != nil {
				e.err = err.Error()
				return e, nil, EditorActionNone
			}
			e.session.Dispatch(dashboard.SetBackground{Background: url})
		case docVariables:
			vars, err := ParseVariables(raw)
			if err != nil {
				e.err = err.Error()
				return e, nil, EditorActionNone
			}
			e.session.Dispatch(dashboard.SetVariables{Variables: vars})
		default:
			url, err := e.upload(raw)
			if err != nil {
				e.err = err.Error()
				return e, nil, EditorActionNone
			}
			e.session.Dispatch(dashboard.SetGlobalSound{State: docSoundStates[e.docCur-docSoundsStart], URL: url})
		}
		e.err = ""
		e.input.Blur()
		e.mode = modeDocument
		return e, nil, EditorActionNone
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return e, cmd, EditorActionNone
}

// --- Rendering ---

// View renders the editor.
func (e EditorView) View() string {
	switch e.mode {
	case modeTypePicker:
		return e.viewTypePicker()
	case modeFields, modeFieldEdit:
		return e.viewFields()
	case modeDocument, modeDocumentEdit:
		return e.viewDocument()
	}

	size := e.canvasSize()
	doc := e.session.Doc()
	now := e.now
	if now.IsZero() {
		now = time.Now()
	}
	canvas := paintDashboard(e.theme, doc, e.width, int(size.H), e.snaps, now)
	if h := e.session.Highlighted(); h >= 0 && h < len(doc.Elements) {
		c := components.Place(doc.Elements[h].Rect, size)
		canvas.Corners(c.X, c.Y, c.W, c.H, e.sty.Highlight)
	}
	if _, i, ok := e.session.Selected(); ok {
		c := components.Place(doc.Elements[i].Rect, size)
		canvas.Corners(c.X, c.Y, c.W, c.H, e.sty.Selection)
		canvas.Put(c.X+c.W-1, c.Y+c.H-1, '◢', e.sty.Handle)
		if c.H > 1 {
			canvas.Put(c.X+c.W-1, c.Y, '↻', e.sty.Handle)
		}
	}
	return canvas.Render() + "\n" + e.viewInfo()
}

func (e EditorView) viewInfo() string {
	doc := e.session.Doc()
	title := doc.Title
	if e.session.Dirty() {
		title += " *"
	}
	info := fmt.Sprintf(" %s  %d elements", title, len(doc.Elements))
	if el, i, ok := e.session.Selected(); ok {
		info = fmt.Sprintf(" #%d %s %q  %.0f,%.0f %.0fx%.0f%%  %.0f°  %s",
			i, el.Type.Label(), el.Title,
			el.Rect.X, el.Rect.Y, el.Rect.W, el.Rect.H,
			el.Rotation*180/math.Pi, doc.Selector(i).String())
	}
	msgStyle := e.sty.FooterDesc
	msg := e.status
	if e.err != "" {
		msgStyle = e.sty.FormError
		msg = e.err
	}
	if e.mode == modeConfirmExit {
		msgStyle = e.sty.FormError
		msg = "Discard unsaved changes? [y/N]"
	}

	hints := []components.KeyHint{
		{Key: "a", Desc: "add"}, {Key: "x", Desc: "delete"}, {Key: "c", Desc: "dup"},
		{Key: "t", Desc: "type"}, {Key: "enter", Desc: "options"}, {Key: "o", Desc: "dashboard"},
		{Key: "ctrl+s", Desc: "save"}, {Key: "esc", Desc: "back"},
	}
	var hb strings.Builder
	for _, h := range hints {
		hb.WriteString(e.sty.FooterKey.Render(" "+h.Key) + e.sty.FooterDesc.Render(":"+h.Desc))
	}
	line1 := e.sty.Footer.Width(e.width).Render(truncate(info, e.width) + "  " + msgStyle.Render(msg))
	line2 := e.sty.Footer.Width(e.width).Render(hb.String())
	return line1 + "\n" + line2
}

func (e EditorView) viewTypePicker() string {
	var lines []string
	for i, t := range dashboard.ElementTypes() {
		cursor := "  "
		st := e.sty.ListRow
		if i == e.typeCur {
			cursor = "> "
			st = e.sty.ListRowSel
		}
		note := ""
		if t.Monitored() {
			note = "  " + e.sty.ListDim.Render("monitored")
		}
		lines = append(lines, st.Render(cursor+padRight(t.Label(), 16))+note)
	}
	title := " Add Element "
	if e.changing {
		title = " Change Type "
	}
	lines = append(lines, "", e.sty.ListDim.Render("[enter] choose  [esc] cancel"))
	return modal(e.theme, e.sty, title, strings.Join(lines, "\n"), 36, e.width, e.height)
}

func (e EditorView) viewFields() string {
	el, _, ok := e.session.Selected()
	if !ok {
		return ""
	}
	fields := e.elementFields()
	var lines []string
	for i, f := range fields {
		value := el.Title
		if f.Key != "" {
			value = f.Value(el.Options)
		}
		if f.Kind == elements.FieldChoice && value == "" && len(f.Choices) > 0 {
			value = "(none)"
		}
		cursor := "  "
		lbl := e.sty.FormLabel
		if i == e.fieldCur {
			cursor = "> "
			lbl = e.sty.FormInputActive
		}
		if i == e.fieldCur && e.mode == modeFieldEdit {
			value = e.input.View()
		} else {
			value = e.sty.FormInput.Render(truncate(value, 40))
		}
		lines = append(lines, cursor+lbl.Render(padRight(f.Label+":", 22))+value)
	}
	if !el.Type.Known() {
		lines = append(lines, "", e.sty.FormError.Render(fmt.Sprintf("Unknown element type %q: press t to pick one", el.Type)))
	}
	if e.err != "" {
		lines = append(lines, "", e.sty.FormError.Render(e.err))
	}
	hint := "[enter] edit / toggle  [esc] back"
	if e.fieldCur < len(fields) && fields[e.fieldCur].Kind == elements.FieldUpload {
		hint = "local file paths are uploaded  " + hint
	}
	lines = append(lines, "", e.sty.ListDim.Render(hint))
	return modal(e.theme, e.sty, " "+el.Type.Label()+" Options ", strings.Join(lines, "\n"), 72, e.width, e.height)
}

func (e EditorView) viewDocument() string {
	doc := e.session.Doc()
	var lines []string
	for row := 0; row < docRowCount(); row++ {
		cursor := "  "
		lbl := e.sty.FormLabel
		if row == e.docCur {
			cursor = "> "
			lbl = e.sty.FormInputActive
		}
		value := e.sty.FormInput.Render(truncate(docRowValue(doc, row), 40))
		if row == e.docCur && e.mode == modeDocumentEdit {
			value = e.input.View()
		}
		lines = append(lines, cursor+lbl.Render(padRight(docRowLabel(row)+":", 22))+value)
	}
	if e.err != "" {
		lines = append(lines, "", e.sty.FormError.Render(e.err))
	}
	lines = append(lines, "", e.sty.ListDim.Render("[enter] edit / toggle  [esc] back"))
	return modal(e.theme, e.sty, " Dashboard ", strings.Join(lines, "\n"), 72, e.width, e.height)
}
