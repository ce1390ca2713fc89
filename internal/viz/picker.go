package viz

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	pickName  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	pickDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	pickHot   = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
)

// Choice is one entry of a Picker.
type Choice struct {
	Name string
	Info string
}

// Picker is a one-screen menu. After the program exits, Selected holds the
// chosen name, or "" when the user quit.
type Picker struct {
	title    string
	choices  []Choice
	cursor   int
	Selected string
}

func NewPicker(title string, choices []Choice) *Picker {
	return &Picker{title: title, choices: choices}
}

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		p.Selected = ""
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.choices)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.choices) > 0 {
			p.Selected = p.choices[p.cursor].Name
		}
		return p, tea.Quit
	}
	return p, nil
}

func (p *Picker) View() string {
	var b strings.Builder
	b.WriteString(pickTitle.Render(p.title) + "\n\n")
	for i, c := range p.choices {
		marker, name := "  ", pickName.Render(c.Name)
		if i == p.cursor {
			marker, name = pickHot.Render("▸ "), pickHot.Render(c.Name)
		}
		b.WriteString(marker + name)
		if c.Info != "" {
			b.WriteString(pickDim.Render("  " + c.Info))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + pickDim.Render("↑↓ move  enter select  q quit"))
	return b.String()
}
