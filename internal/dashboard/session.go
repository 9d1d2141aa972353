package dashboard

import (
	"context"
	"fmt"
)

// Writer persists dashboards. Both calls return the slug the server
// stored the document under, which may differ from the one requested.
type Writer interface {
	Create(ctx context.Context, d Dashboard) (string, error)
	Update(ctx context.Context, slug string, d Dashboard) (string, error)
}

// Session is one editing session over a dashboard: the document plus the
// ephemeral selection state that never gets persisted.
type Session struct {
	doc         Dashboard
	slug        string
	selected    int
	highlighted int
	dirty       bool
}

// NewSession starts editing d. An empty slug means the document has not
// been saved yet.
func NewSession(d Dashboard) *Session {
	return &Session{
		doc:         d.Clone(),
		slug:        d.Slug,
		selected:    -1,
		highlighted: -1,
	}
}

// Doc returns the current document.
func (s *Session) Doc() Dashboard { return s.doc }

// Slug returns the slug subsequent saves go to.
func (s *Session) Slug() string { return s.slug }

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// Dispatch applies a to the document and keeps the selection pointing at
// the same element where that element still exists.
func (s *Session) Dispatch(a Action) {
	before := len(s.doc.Elements)
	s.doc = Apply(s.doc, a)
	s.dirty = true

	switch a := a.(type) {
	case SetDashboard:
		s.selected, s.highlighted = -1, -1
	case AddElement, DuplicateElement:
		if len(s.doc.Elements) > before {
			s.selected = len(s.doc.Elements) - 1
		}
	case DeleteElement:
		if len(s.doc.Elements) == before {
			break
		}
		s.selected = shiftAfterDelete(s.selected, a.Index)
		s.highlighted = shiftAfterDelete(s.highlighted, a.Index)
	case ReorderElements:
		s.selected = followMove(s.selected, a.Source, a.Destination, before)
		s.highlighted = followMove(s.highlighted, a.Source, a.Destination, before)
	}

	if s.selected >= len(s.doc.Elements) {
		s.selected = -1
	}
	if s.highlighted >= len(s.doc.Elements) {
		s.highlighted = -1
	}
}

func shiftAfterDelete(sel, deleted int) int {
	switch {
	case sel == deleted:
		return -1
	case sel > deleted:
		return sel - 1
	}
	return sel
}

func followMove(sel, src, dst, n int) int {
	if sel < 0 || src < 0 || src >= n || dst < 0 || dst >= n {
		return sel
	}
	switch {
	case sel == src:
		return dst
	case src < sel && sel <= dst:
		return sel - 1
	case dst <= sel && sel < src:
		return sel + 1
	}
	return sel
}

// Select marks element i as the one being edited; -1 clears.
func (s *Session) Select(i int) {
	if i < -1 || i >= len(s.doc.Elements) {
		i = -1
	}
	s.selected = i
}

// Highlight marks element i as hovered; -1 clears.
func (s *Session) Highlight(i int) {
	if i < -1 || i >= len(s.doc.Elements) {
		i = -1
	}
	s.highlighted = i
}

// Selected returns the selected element, resolved from the document.
func (s *Session) Selected() (Element, int, bool) {
	if s.selected < 0 || s.selected >= len(s.doc.Elements) {
		return Element{}, -1, false
	}
	return s.doc.Elements[s.selected], s.selected, true
}

// Highlighted returns the highlighted index or -1.
func (s *Session) Highlighted() int { return s.highlighted }

// Save writes the document through w and adopts whatever slug the server
// returns, so renames keep following the stored document.
func (s *Session) Save(ctx context.Context, w Writer) error {
	var (
		slug string
		err  error
	)
	if s.slug == "" {
		slug, err = w.Create(ctx, s.doc)
	} else {
		slug, err = w.Update(ctx, s.slug, s.doc)
	}
	if err != nil {
		return fmt.Errorf("save dashboard %q: %w", s.doc.Title, err)
	}
	s.slug = slug
	s.doc.Slug = slug
	s.dirty = false
	return nil
}
