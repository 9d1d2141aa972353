package elements

import (
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/meerkat/internal/dashboard"
)

type staticText struct{}

func (staticText) Render(el dashboard.Element, ctx Context) Tile {
	return Tile{
		Lines: textLines(el.Options.String("text"), el.Options, ctx.Width, ctx.Height),
		Style: textStyle(el.Options, ctx.Theme),
	}
}

func (staticText) Fields() []Field {
	return join([]Field{{Key: "text", Label: "Text", Kind: FieldText}}, textFields())
}

type staticIcon struct{}

func (staticIcon) Render(el dashboard.Element, ctx Context) Tile {
	st := lipgloss.NewStyle().
		Foreground(optColor(el.Options, "strokeColor", ctx.Theme.Base0D)).
		Background(ctx.Theme.Base00).
		Bold(el.Options.Float("strokeWidth", 1) > 1)
	lines := []string{align(glyph(el.Options.String("svg")), ctx.Width, "center")}
	return Tile{Lines: middle(lines, ctx.Height), Style: st}
}

func (staticIcon) Fields() []Field {
	return []Field{
		{Key: "svg", Label: "Icon", Kind: FieldChoice, Choices: GlyphNames()},
		{Key: "strokeColor", Label: "Color", Kind: FieldColor},
		{Key: "strokeWidth", Label: "Stroke Width", Kind: FieldNumber},
	}
}

type staticImage struct{}

func (staticImage) Render(el dashboard.Element, ctx Context) Tile {
	label := "▣ " + el.Title
	if src := el.Options.String("image"); src != "" {
		label = "▣ " + path.Base(src)
	}
	st := lipgloss.NewStyle().Foreground(ctx.Theme.Base04).Background(ctx.Theme.Base01)
	return Tile{Lines: middle([]string{align(label, ctx.Width, "center")}, ctx.Height), Style: st}
}

func (staticImage) Fields() []Field {
	return []Field{{Key: "image", Label: "Image", Kind: FieldUpload}}
}

// TickerOffset is how far a ticker of textLen cells has scrolled across a
// line of width cells at now. One pass takes period.
func TickerOffset(now time.Time, period time.Duration, textLen, width int) int {
	span := textLen + width
	if period <= 0 || span == 0 {
		return 0
	}
	elapsed := now.UnixNano() % int64(period)
	return int(elapsed * int64(span) / int64(period))
}

type ticker struct{}

func (ticker) Render(el dashboard.Element, ctx Context) Tile {
	text := []rune(strings.ReplaceAll(el.Options.String("text"), "\n", " "))
	period := time.Duration(el.Options.Float("scrollPeriod", 15) * float64(time.Second))
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	// text enters from the right edge and leaves on the left
	track := append([]rune(strings.Repeat(" ", ctx.Width)), text...)
	track = append(track, []rune(strings.Repeat(" ", ctx.Width))...)
	off := TickerOffset(now, period, len(text), ctx.Width)
	window := string(track[off : off+ctx.Width])
	return Tile{Lines: middle([]string{window}, ctx.Height), Style: textStyle(el.Options, ctx.Theme)}
}

func (ticker) Fields() []Field {
	return []Field{
		{Key: "text", Label: "Text", Kind: FieldText},
		{Key: "fontSize", Label: "Font Size", Kind: FieldNumber},
		{Key: "fontColor", Label: "Font Color", Kind: FieldColor},
		{Key: "backgroundColor", Label: "Background Color", Kind: FieldColor},
		{Key: "scrollPeriod", Label: "Scroll Period (s)", Kind: FieldNumber},
	}
}

type video struct{}

func (video) Render(el dashboard.Element, ctx Context) Tile {
	label := "▶ " + el.Title
	if src := el.Options.String("source"); src != "" {
		label = "▶ " + src
	}
	st := lipgloss.NewStyle().Foreground(ctx.Theme.Base05).Background(ctx.Theme.Base01)
	return Tile{Lines: middle(wrap(label, ctx.Width), ctx.Height), Style: st}
}

func (video) Fields() []Field {
	return []Field{{Key: "source", Label: "Video URL", Kind: FieldText}}
}

type audio struct{}

func (audio) Render(el dashboard.Element, ctx Context) Tile {
	label := "♪ " + el.Title
	if src := el.Options.String("source"); src != "" {
		label = "♪ " + path.Base(src)
	}
	st := lipgloss.NewStyle().Foreground(ctx.Theme.Base0E).Background(ctx.Theme.Base00)
	return Tile{Lines: middle([]string{align(label, ctx.Width, "center")}, ctx.Height), Style: st}
}

func (audio) Fields() []Field {
	return []Field{{Key: "source", Label: "Stream URL", Kind: FieldUpload}}
}
