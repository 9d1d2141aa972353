package dashboard

import (
	"fmt"

	"github.com/tonhe/meerkat/internal/icinga"
)

// Action is an edit applied to a dashboard by Apply.
type Action interface {
	action()
}

type (
	// SetDashboard replaces the whole document.
	SetDashboard struct{ Dashboard Dashboard }
	// SetTitle renames the dashboard. The slug is left to the server.
	SetTitle struct{ Title string }
	// SetTags replaces the tag set.
	SetTags struct{ Tags []string }
	// SetBackground sets the background image reference.
	SetBackground struct{ Background string }
	// SetGlobalMute silences or re-enables every alert on the dashboard.
	SetGlobalMute struct{ Mute bool }
	// SetGlobalSound sets the dashboard default sound for one state.
	SetGlobalSound struct {
		State icinga.State
		URL   string
	}
	// SetVariables replaces the filter template variables.
	SetVariables struct{ Variables map[string]string }
	// AddElement appends a new element with its type's defaults.
	AddElement struct{ Type ElementType }
	// DeleteElement removes the element at Index.
	DeleteElement struct{ Index int }
	// DuplicateElement appends a deep copy of Element.
	DuplicateElement struct{ Element Element }
	// UpdateElement replaces the element at Index.
	UpdateElement struct {
		Index   int
		Element Element
	}
	// ReorderElements moves the element at Source to Destination.
	ReorderElements struct{ Source, Destination int }
	// UpdateOptionsAction shallow-merges Patch into the element's options.
	UpdateOptionsAction struct {
		Index int
		Patch Options
	}
	// ChangeType switches the element type and resets its options.
	ChangeType struct {
		Index int
		Type  ElementType
	}
	// UpdateRect moves or resizes the element at Index.
	UpdateRect struct {
		Index int
		Rect  Rect
	}
	// UpdateRotation sets the rotation, in radians, of the element at Index.
	UpdateRotation struct {
		Index    int
		Rotation float64
	}
)

func (SetDashboard) action()        {}
func (SetTitle) action()            {}
func (SetTags) action()             {}
func (SetBackground) action()       {}
func (SetGlobalMute) action()       {}
func (SetGlobalSound) action()      {}
func (SetVariables) action()        {}
func (AddElement) action()          {}
func (DeleteElement) action()       {}
func (DuplicateElement) action()    {}
func (UpdateElement) action()       {}
func (ReorderElements) action()     {}
func (UpdateOptionsAction) action() {}
func (ChangeType) action()          {}
func (UpdateRect) action()          {}
func (UpdateRotation) action()      {}

// Apply returns the document that results from applying a to d. d is never
// modified. Actions that address an element index outside the document
// return an unchanged copy. An action type Apply does not know is a
// programming error and panics.
func Apply(d Dashboard, a Action) Dashboard {
	next := d
	next.Elements = append([]Element(nil), d.Elements...)

	switch a := a.(type) {
	case SetDashboard:
		return a.Dashboard.Clone()

	case SetTitle:
		next.Title = a.Title

	case SetTags:
		next.Tags = dedupe(a.Tags)

	case SetBackground:
		next.Background = a.Background

	case SetGlobalMute:
		next.GlobalMute = a.Mute

	case SetGlobalSound:
		switch a.State {
		case icinga.StateOK:
			next.OkSound = a.URL
		case icinga.StateWarning:
			next.WarningSound = a.URL
		case icinga.StateCritical:
			next.CriticalSound = a.URL
		case icinga.StateUnknown:
			next.UnknownSound = a.URL
		case icinga.StateUp:
			next.UpSound = a.URL
		case icinga.StateDown:
			next.DownSound = a.URL
		}

	case SetVariables:
		next.Variables = nil
		if a.Variables != nil {
			next.Variables = make(map[string]string, len(a.Variables))
			for k, v := range a.Variables {
				next.Variables[k] = v
			}
		}

	case AddElement:
		t := a.Type
		if t == "" {
			t = CheckCard
		}
		next.Elements = append(next.Elements, Element{
			Type:    t,
			Title:   "New Element",
			Rect:    DefaultRect,
			Options: DefaultOptions(t),
		})

	case DeleteElement:
		if !inRange(a.Index, len(next.Elements)) {
			break
		}
		next.Elements = append(next.Elements[:a.Index], next.Elements[a.Index+1:]...)

	case DuplicateElement:
		next.Elements = append(next.Elements, a.Element.Clone())

	case UpdateElement:
		if !inRange(a.Index, len(next.Elements)) {
			break
		}
		next.Elements[a.Index] = a.Element.Clone()

	case ReorderElements:
		n := len(next.Elements)
		if !inRange(a.Source, n) || !inRange(a.Destination, n) {
			break
		}
		el := next.Elements[a.Source]
		next.Elements = append(next.Elements[:a.Source], next.Elements[a.Source+1:]...)
		next.Elements = append(next.Elements[:a.Destination], append([]Element{el}, next.Elements[a.Destination:]...)...)

	case UpdateOptionsAction:
		if !inRange(a.Index, len(next.Elements)) {
			break
		}
		el := next.Elements[a.Index]
		el.Options = UpdateOptions(el.Options, a.Patch)
		next.Elements[a.Index] = el

	case ChangeType:
		if !inRange(a.Index, len(next.Elements)) {
			break
		}
		el := next.Elements[a.Index]
		el.Type = a.Type
		el.Options = DefaultOptions(a.Type)
		next.Elements[a.Index] = el

	case UpdateRect:
		if !inRange(a.Index, len(next.Elements)) {
			break
		}
		next.Elements[a.Index].Rect = a.Rect

	case UpdateRotation:
		if !inRange(a.Index, len(next.Elements)) {
			break
		}
		next.Elements[a.Index].Rotation = a.Rotation

	default:
		panic(fmt.Sprintf("dashboard: unknown action %T", a))
	}
	return next
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

func dedupe(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
