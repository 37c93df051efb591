package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/elastosim/internal/config"
	"github.com/san-kum/elastosim/internal/relax"
)

// Picker lists the presets and hands the chosen one to the live view.
type Picker struct {
	names  []string
	cursor int
	fps    int
	err    error
}

func NewPicker(fps int) Picker {
	return Picker{names: config.ListPresets(), fps: fps}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter":
		name := p.names[p.cursor]
		rc, err := config.GetPreset(name).ToSolverConfig()
		if err != nil {
			p.err = err
			return p, nil
		}
		s, err := relax.New(rc)
		if err != nil {
			p.err = err
			return p, nil
		}
		live := NewModel(s, name, p.fps)
		return live, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	st := newStyles(Themes[0])
	var b strings.Builder
	b.WriteString(st.header.Render("ELASTOSIM") + "\n")
	for i, name := range p.names {
		line := fmt.Sprintf("%-12s %s", name, config.Presets[name].Description)
		if i == p.cursor {
			b.WriteString(st.good.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + st.value.Render(line) + "\n")
		}
	}
	if p.err != nil {
		b.WriteString("\n" + st.bad.Render(p.err.Error()) + "\n")
	}
	b.WriteString(st.help.Render("↑↓:Select Enter:Relax Q:Quit"))
	return b.String()
}

// RunPicker opens the preset menu and blocks until the user quits.
func RunPicker(fps int) error {
	_, err := tea.NewProgram(NewPicker(fps), tea.WithAltScreen()).Run()
	return err
}
