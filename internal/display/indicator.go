// Package display renders the hat status indicator: one icon and one short
// status string.
package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/isabella232/moabian/internal/plant"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 2)

	iconStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	textStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	hoverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666688")).
			Italic(true)
)

var glyphs = map[plant.Icon]string{
	plant.IconBlank:  " ",
	plant.IconDot:    "●",
	plant.IconUp:     "▲",
	plant.IconDown:   "▼",
	plant.IconUpDown: "▲▼",
	plant.IconCheck:  "✓",
	plant.IconX:      "✗",
}

// Glyph returns the character drawn for an icon.
func Glyph(icon plant.Icon) string {
	if g, ok := glyphs[icon]; ok {
		return g
	}
	return glyphs[plant.IconBlank]
}

// Indicator draws to a terminal in place of the hat's LCD. It is safe for
// concurrent use.
type Indicator struct {
	mu    sync.Mutex
	w     io.Writer
	icon  plant.Icon
	text  plant.Text
	shown bool
}

func New(w io.Writer) *Indicator {
	return &Indicator{w: w}
}

// Render returns the styled panel for an icon and text.
func Render(icon plant.Icon, text plant.Text) string {
	return panelStyle.Render(iconStyle.Render(Glyph(icon)) + " " + textStyle.Render(text.String()))
}

func (d *Indicator) Show(icon plant.Icon, text plant.Text) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.icon, d.text, d.shown = icon, text, true
	_, err := fmt.Fprintln(d.w, Render(icon, text))
	return err
}

// Hover shows the idle screen the hat displays while the plate is parked.
func (d *Indicator) Hover() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.icon, d.text, d.shown = plant.IconBlank, plant.TextBlank, false
	_, err := fmt.Fprintln(d.w, hoverStyle.Render("moab: hovering"))
	return err
}

// Current returns what is on the display and whether anything is shown.
func (d *Indicator) Current() (plant.Icon, plant.Text, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.icon, d.text, d.shown
}
