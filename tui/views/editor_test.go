package views

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/tui/styles"
)

type fakeStore struct {
	created  int
	updated  int
	uploaded []string
	err      error
}

func (s *fakeStore) Create(ctx context.Context, d dashboard.Dashboard) (string, error) {
	s.created++
	return dashboard.TitleToSlug(d.Title), s.err
}

func (s *fakeStore) Update(ctx context.Context, slug string, d dashboard.Dashboard) (string, error) {
	s.updated++
	return dashboard.TitleToSlug(d.Title), s.err
}

func (s *fakeStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.uploaded = append(s.uploaded, filename)
	return "/upload/" + filename, s.err
}

// newTestEditor returns an editor whose canvas is 100x100 cells, so one
// cell is one percent.
func newTestEditor(store *fakeStore, d dashboard.Dashboard) EditorView {
	e := NewEditorView(styles.DefaultTheme, store, time.Second)
	e.SetSize(100, 100+editorInfoLines)
	e.Load(d)
	return e
}

func oneCard() dashboard.Dashboard {
	return dashboard.Dashboard{
		Title: "Ops",
		Elements: []dashboard.Element{{
			Type:  dashboard.StaticText,
			Title: "Note",
			Rect:  dashboard.Rect{X: 10, Y: 10, W: 20, H: 20},
		}},
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
}

func TestEditorKeyboardNudge(t *testing.T) {
	e := newTestEditor(&fakeStore{}, oneCard())

	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRight})
	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyDown})
	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyShiftRight})

	r := e.Session().Doc().Elements[0].Rect
	if !near(r.X, 11) || !near(r.Y, 11) || !near(r.W, 21) || !near(r.H, 20) {
		t.Errorf("rect = %+v, want X=11 Y=11 W=21 H=20", r)
	}
	if !e.Session().Dirty() {
		t.Error("nudging should mark the session dirty")
	}
}

func TestEditorMouseDragMoves(t *testing.T) {
	e := newTestEditor(&fakeStore{}, oneCard())

	e, _, _ = e.Update(press(15, 15))
	e, _, _ = e.Update(motion(20, 18))
	e, _, _ = e.Update(release(20, 18))

	r := e.Session().Doc().Elements[0].Rect
	if !near(r.X, 15) || !near(r.Y, 13) {
		t.Errorf("after drag rect = %+v, want X=15 Y=13", r)
	}
	if !near(r.W, 20) || !near(r.H, 20) {
		t.Errorf("moving changed the size: %+v", r)
	}

	// motion after release only highlights
	e, _, _ = e.Update(motion(40, 40))
	if got := e.Session().Doc().Elements[0].Rect; got != r {
		t.Errorf("motion without a drag moved the element to %+v", got)
	}
}

func TestEditorMouseDragResizesFromCorner(t *testing.T) {
	e := newTestEditor(&fakeStore{}, oneCard())

	// bottom right cell of the selected element
	e, _, _ = e.Update(press(29, 29))
	e, _, _ = e.Update(motion(34, 31))
	e, _, _ = e.Update(release(34, 31))

	r := e.Session().Doc().Elements[0].Rect
	if !near(r.X, 10) || !near(r.Y, 10) || !near(r.W, 25) || !near(r.H, 22) {
		t.Errorf("rect = %+v, want X=10 Y=10 W=25 H=22", r)
	}
}

func TestEditorClickEmptyClearsSelection(t *testing.T) {
	e := newTestEditor(&fakeStore{}, oneCard())
	e, _, _ = e.Update(press(80, 80))
	if _, _, ok := e.Session().Selected(); ok {
		t.Error("clicking empty canvas should clear the selection")
	}
}

func TestEditorRotateKeys(t *testing.T) {
	e := newTestEditor(&fakeStore{}, oneCard())
	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'>'}})
	if got := e.Session().Doc().Elements[0].Rotation; !near(got, math.Pi/4) {
		t.Errorf("rotation = %v, want π/4", got)
	}
	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'<'}})
	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'<'}})
	if got := e.Session().Doc().Elements[0].Rotation; !near(got, -math.Pi/4) {
		t.Errorf("rotation = %v, want -π/4", got)
	}
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{2 * math.Pi, 0},
		{-5 * math.Pi / 4, 3 * math.Pi / 4},
	}
	for _, tt := range tests {
		if got := normalizeRotation(tt.in); !near(got, tt.want) {
			t.Errorf("normalizeRotation(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEditorAddAndDeleteElement(t *testing.T) {
	e := newTestEditor(&fakeStore{}, oneCard())

	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyEnter})

	doc := e.Session().Doc()
	if len(doc.Elements) != 2 {
		t.Fatalf("elements = %d, want 2", len(doc.Elements))
	}
	if doc.Elements[1].Type != dashboard.ElementTypes()[0] {
		t.Errorf("added type = %q, want %q", doc.Elements[1].Type, dashboard.ElementTypes()[0])
	}
	_, idx, ok := e.Session().Selected()
	if !ok || idx != 1 {
		t.Fatalf("new element should be selected, got %d %v", idx, ok)
	}

	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if n := len(e.Session().Doc().Elements); n != 1 {
		t.Errorf("after delete elements = %d, want 1", n)
	}
}

func TestEditorSaveCreatesThenUpdates(t *testing.T) {
	store := &fakeStore{}
	e := newTestEditor(store, oneCard())

	e, _, action := e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if action != EditorActionSaved {
		t.Fatalf("action = %v, want saved (err %q)", action, e.err)
	}
	if store.created != 1 || e.Session().Slug() != "ops" {
		t.Errorf("created = %d slug = %q", store.created, e.Session().Slug())
	}

	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, _, action = e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if action != EditorActionSaved || store.updated != 1 {
		t.Errorf("second save action = %v updated = %d", action, store.updated)
	}
}

func TestEditorSaveFailureStaysOpen(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	e := newTestEditor(store, oneCard())

	e, _, action := e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if action != EditorActionNone {
		t.Errorf("action = %v, want none", action)
	}
	if e.err == "" {
		t.Error("a failed save should report the error")
	}
}

func TestEditorSaveRejectsInvalid(t *testing.T) {
	store := &fakeStore{}
	d := oneCard()
	d.Title = ""
	e := newTestEditor(store, d)

	_, _, action := e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if action != EditorActionNone || store.created != 0 {
		t.Errorf("invalid dashboard saved: action %v created %d", action, store.created)
	}
}

func TestEditorReportsUnknownTypeOnLoad(t *testing.T) {
	store := &fakeStore{}
	d := oneCard()
	d.Elements[0].Type = "marquee"
	e := newTestEditor(store, d)

	if !strings.Contains(e.err, "elementtype") {
		t.Errorf("expected unknown type reported on load, got err %q", e.err)
	}

	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if e.mode != modeFields {
		t.Fatalf("expected field mode, got %v", e.mode)
	}
	if !strings.Contains(e.View(), `Unknown element type "marquee"`) {
		t.Error("field panel should name the unknown type")
	}

	_, _, action := e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if action == EditorActionSaved || store.created != 0 {
		t.Error("document with an unknown element type was saved")
	}
}

func TestEditorEscapeConfirmsDiscard(t *testing.T) {
	e := newTestEditor(&fakeStore{}, oneCard())

	_, _, action := e.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if action != EditorActionClose {
		t.Errorf("clean editor: action = %v, want close", action)
	}

	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRight})
	e, _, action = e.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if action != EditorActionNone || e.mode != modeConfirmExit {
		t.Fatalf("dirty editor should ask first, got action %v mode %v", action, e.mode)
	}
	e, _, action = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if action != EditorActionNone || e.mode != modeCanvas {
		t.Errorf("declining should return to the canvas")
	}
	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, _, action = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if action != EditorActionClose {
		t.Errorf("confirming: action = %v, want close", action)
	}
}

func TestEditorDocumentGlobalMuteToggle(t *testing.T) {
	e := newTestEditor(&fakeStore{}, oneCard())

	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	for i := 0; i < docGlobalMute; i++ {
		e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	e, _, _ = e.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !e.Session().Doc().GlobalMute {
		t.Error("enter on the mute row should toggle global mute")
	}
}

func TestEditorUploadLocalFile(t *testing.T) {
	store := &fakeStore{}
	e := newTestEditor(store, oneCard())

	path := filepath.Join(t.TempDir(), "alarm.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := e.upload(path)
	if err != nil {
		t.Fatalf("upload() error: %v", err)
	}
	if got != "/upload/alarm.mp3" || len(store.uploaded) != 1 {
		t.Errorf("upload() = %q, uploads %v", got, store.uploaded)
	}

	for _, v := range []string{"", "https://example.com/a.mp3", "/upload/b.mp3", "no-such-file.mp3"} {
		got, err := e.upload(v)
		if err != nil || got != v {
			t.Errorf("upload(%q) = %q, %v; want unchanged", v, got, err)
		}
	}
	if len(store.uploaded) != 1 {
		t.Errorf("non-files were uploaded: %v", store.uploaded)
	}
}

func TestParseVariables(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string]string
		wantErr bool
	}{
		{"", map[string]string{}, false},
		{"env=prod", map[string]string{"env": "prod"}, false},
		{" env = prod , site=ams ", map[string]string{"env": "prod", "site": "ams"}, false},
		{"a=", map[string]string{"a": ""}, false},
		{"novalue", nil, true},
		{"=x", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseVariables(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVariables(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseVariables(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("ParseVariables(%q)[%q] = %q, want %q", tt.in, k, got[k], v)
			}
		}
	}

	vars := map[string]string{"site": "ams", "env": "prod"}
	if got := FormatVariables(vars); got != "env=prod, site=ams" {
		t.Errorf("FormatVariables() = %q", got)
	}
}
