// Package menu is the interactive controller picker. The first screen lists
// the registry; the second adjusts the chosen controller's settings before
// the session starts.
package menu

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/isabella232/moabian/internal/config"
	"github.com/isabella232/moabian/internal/control"
	"github.com/isabella232/moabian/internal/display"
	"github.com/isabella232/moabian/internal/plant"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var controllerInfo = map[string]string{
	"pid":      "classic PID balance",
	"brain":    "trained brain on :5000",
	"custom1":  "custom model on :5001",
	"custom2":  "custom model on :5002",
	"joystick": "manual tilt",
	"zero":     "level plate",
}

type param struct {
	name string
	step float64
}

var controllerParams = map[string][]param{
	"pid":      {{"frequency", 1}, {"max_angle", 1}, {"kp", 1}, {"ki", 0.1}, {"kd", 1}},
	"brain":    {{"frequency", 1}, {"max_angle", 1}, {"timeout_ms", 50}},
	"custom1":  {{"frequency", 1}, {"max_angle", 1}, {"timeout_ms", 50}},
	"custom2":  {{"frequency", 1}, {"max_angle", 1}, {"timeout_ms", 50}},
	"joystick": {{"frequency", 1}, {"joy_max_angle", 1}},
	"zero":     {{"frequency", 1}},
}

type state int

const (
	stateMenu state = iota
	stateConfig
)

// Choice is the outcome of the picker.
type Choice struct {
	Controller string
	Params     map[string]float64
}

// Apply writes the chosen controller and settings into cfg.
func (c Choice) Apply(cfg *config.Config) {
	cfg.Controller = c.Controller
	for name, v := range c.Params {
		switch name {
		case "frequency":
			cfg.Frequency = int(v)
		case "max_angle":
			cfg.Plate.MaxAngle = v
		case "kp":
			cfg.PID.Kp = v
		case "ki":
			cfg.PID.Ki = v
		case "kd":
			cfg.PID.Kd = v
		case "timeout_ms":
			cfg.Inference.Timeout = time.Duration(v) * time.Millisecond
		case "joy_max_angle":
			cfg.Joystick.MaxAngle = v
		}
	}
}

type model struct {
	state  state
	cursor int
	specs  []control.Spec

	selected    control.Spec
	params      map[string]float64
	paramNames  []param
	paramCursor int
	editing     bool
	editBuf     string

	choice *Choice
}

func newModel(cfg *config.Config) model {
	m := model{
		specs: control.Specs(),
		params: map[string]float64{
			"frequency":     float64(cfg.Frequency),
			"max_angle":     cfg.Plate.MaxAngle,
			"kp":            cfg.PID.Kp,
			"ki":            cfg.PID.Ki,
			"kd":            cfg.PID.Kd,
			"timeout_ms":    float64(cfg.Inference.Timeout / time.Millisecond),
			"joy_max_angle": cfg.Joystick.MaxAngle,
		},
	}
	for i, s := range m.specs {
		if s.Name == cfg.Controller {
			m.cursor = i
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		}
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.specs)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.specs[m.cursor]
		m.paramNames = controllerParams[m.selected.Name]
		m.paramCursor = 0
		m.state = stateConfig
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.params[m.paramNames[m.paramCursor].name] = v
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = strconv.FormatFloat(m.params[m.paramNames[m.paramCursor].name], 'f', -1, 64)
	case "left", "h":
		p := m.paramNames[m.paramCursor]
		m.params[p.name] -= p.step
	case "right", "l":
		p := m.paramNames[m.paramCursor]
		m.params[p.name] += p.step
	case "s":
		chosen := make(map[string]float64, len(m.paramNames))
		for _, p := range m.paramNames {
			chosen[p.name] = m.params[p.name]
		}
		m.choice = &Choice{Controller: m.selected.Name, Params: chosen}
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	}
	return ""
}

// arrow is the navigation hint shown beside item i of n: only down on the
// first item, only up on the last.
func arrow(i, n int) plant.Icon {
	switch {
	case n <= 1:
		return plant.IconBlank
	case i == 0:
		return plant.IconDown
	case i == n-1:
		return plant.IconUp
	default:
		return plant.IconUpDown
	}
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("              " + cyan.Render("m o a b") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, s := range m.specs {
		desc := controllerInfo[s.Name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render(fmt.Sprintf("%-3s", display.Glyph(arrow(i, len(m.specs))))) +
				white.Render(fmt.Sprintf("%-10s", s.Name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("         " + dim.Render(fmt.Sprintf("%-10s", s.Name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter choose   q quit") + "\n")

	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + display.Render(m.selected.Icon, m.selected.Text) + "\n")
	b.WriteString("      " + cyan.Render(m.selected.Name) + "  " + dim.Render(controllerInfo[m.selected.Name]) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	for i, p := range m.paramNames {
		val := fmt.Sprintf("%8.3f", m.params[p.name])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-14s", p.name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-14s", p.name)) + dim.Render(val) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  s start  esc back") + "\n")

	return b.String()
}

// Run shows the picker and applies the choice to cfg. It reports false if
// the user quit without choosing.
func Run(cfg *config.Config) (bool, error) {
	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(model)
	if !ok || m.choice == nil {
		return false, nil
	}
	m.choice.Apply(cfg)
	return true, nil
}
