package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/icinga"
)

// Styles holds all themed lipgloss styles for the application.
type Styles struct {
	// Layout
	AppContainer lipgloss.Style
	Canvas       lipgloss.Style

	// Header / Footer
	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	HeaderStatus lipgloss.Style
	Footer       lipgloss.Style
	FooterKey    lipgloss.Style
	FooterDesc   lipgloss.Style

	// Banner is the non-blocking "not updating" strip over the canvas.
	Banner lipgloss.Style

	// Lists
	ListHeader lipgloss.Style
	ListRow    lipgloss.Style
	ListRowSel lipgloss.Style
	ListDim    lipgloss.Style

	// Editor overlays
	Selection lipgloss.Style
	Highlight lipgloss.Style
	Handle    lipgloss.Style

	SparklineStyle lipgloss.Style

	// Modal / overlay
	ModalBorder lipgloss.Style
	ModalTitle  lipgloss.Style

	// Form
	FormLabel       lipgloss.Style
	FormInput       lipgloss.Style
	FormInputActive lipgloss.Style
	FormCursor      lipgloss.Style
	FormError       lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(theme Theme) *Styles {
	return &Styles{
		AppContainer: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base00),
		Canvas: lipgloss.NewStyle().
			Foreground(theme.Base03).
			Background(theme.Base00),

		Header: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base01).
			Bold(true).
			Padding(0, 1),
		HeaderTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		HeaderStatus: lipgloss.NewStyle().
			Foreground(theme.Base0B),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Base04).
			Background(theme.Base01).
			Padding(0, 1),
		FooterKey: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		FooterDesc: lipgloss.NewStyle().
			Foreground(theme.Base04),

		Banner: lipgloss.NewStyle().
			Foreground(theme.Base00).
			Background(theme.Base08).
			Bold(true),

		ListHeader: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		ListRow: lipgloss.NewStyle().
			Foreground(theme.Base05),
		ListRowSel: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base02),
		ListDim: lipgloss.NewStyle().
			Foreground(theme.Base03),

		Selection: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		Highlight: lipgloss.NewStyle().
			Foreground(theme.Base04),
		Handle: lipgloss.NewStyle().
			Foreground(theme.Base00).
			Background(theme.Base0D),

		SparklineStyle: lipgloss.NewStyle().
			Foreground(theme.Base0C),

		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Base0D).
			BorderBackground(theme.Base00).
			Background(theme.Base00).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),

		FormLabel: lipgloss.NewStyle().
			Foreground(theme.Base04),
		FormInput: lipgloss.NewStyle().
			Foreground(theme.Base05),
		FormInputActive: lipgloss.NewStyle().
			Foreground(theme.Base06).
			Background(theme.Base02),
		FormCursor: lipgloss.NewStyle().
			Foreground(theme.Base0B),
		FormError: lipgloss.NewStyle().
			Foreground(theme.Base08),
	}
}

// StateColor is the theme colour for a monitoring state. Acknowledged
// problems use a muted variant of their colour.
func StateColor(theme Theme, state icinga.State, acknowledged bool) lipgloss.Color {
	switch state {
	case icinga.StateOK, icinga.StateUp:
		return theme.Base0B
	case icinga.StateWarning:
		if acknowledged {
			return theme.Base09
		}
		return theme.Base0A
	case icinga.StateCritical, icinga.StateDown:
		if acknowledged {
			return theme.Base0F
		}
		return theme.Base08
	case icinga.StateUnknown:
		if acknowledged {
			return theme.Base04
		}
		return theme.Base0E
	}
	return theme.Base03
}

// StateStyle renders text in the colour of a state.
func StateStyle(theme Theme, state icinga.State, acknowledged bool) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(StateColor(theme, state, acknowledged))
}
