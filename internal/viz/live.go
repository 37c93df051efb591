package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/grid"
	"github.com/san-kum/elastosim/internal/relax"
	"gonum.org/v1/gonum/mat"
)

const (
	canvasWidth  = 48
	canvasHeight = 24
	graphWindow  = 400
	maxBatch     = 512
)

// Fields lists the views the live model cycles through.
var Fields = []string{"lattice", "ux", "uy", "sxx", "syy", "sxy", "von mises"}

type TickMsg time.Time

// Model steps a solver a batch of iterations per frame and draws it.
type Model struct {
	solver     *relax.Solver
	name       string
	frame      time.Duration
	running    bool
	err        error
	batch      int
	exaggerate float64
	field      int
	theme      int
	showHelp   bool
	canvas     *Canvas
	mesh       [2]*mat.Dense
}

func NewModel(s *relax.Solver, name string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	xx, yy := s.Geometry().MeshGrid()
	return Model{
		solver:     s,
		name:       name,
		frame:      time.Second / time.Duration(fps),
		running:    true,
		batch:      16,
		exaggerate: 1,
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		mesh:       [2]*mat.Dense{xx, yy},
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil && !m.solver.Done() {
				m.running = !m.running
			}
		case "r":
			m.solver.Reset()
			m.err = nil
			m.running = true
		case "f":
			m.field = (m.field + 1) % len(Fields)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "+", "=":
			m.exaggerate = math.Min(m.exaggerate*2, 64)
		case "-", "_":
			m.exaggerate = math.Max(m.exaggerate/2, 0.25)
		case ".", ">":
			m.batch = min(m.batch*2, maxBatch)
		case ",", "<":
			m.batch = max(m.batch/2, 1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.advance()
		return m, m.tick()
	}
	return m, nil
}

// advance runs up to one batch of iterations.
func (m *Model) advance() {
	if !m.running {
		return
	}
	for k := 0; k < m.batch; k++ {
		if m.solver.Done() {
			m.running = false
			return
		}
		if _, err := m.solver.Step(); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.bad.Render("FAILED")
	case m.solver.Done():
		return st.good.Render("DONE")
	case m.running:
		return st.good.Render("RELAXING")
	default:
		return st.warn.Render("PAUSED")
	}
}

func (m Model) picture() string {
	s := m.solver
	var f *mat.Dense
	switch Fields[m.field] {
	case "lattice":
		ux, uy := s.Displacement()
		n := s.Geometry().N
		px, py := grid.New(n), grid.New(n)
		px.Add(m.mesh[0], scaled(ux, m.exaggerate))
		py.Add(m.mesh[1], scaled(uy, m.exaggerate))
		m.canvas.Clear()
		DrawLattice(m.canvas, DefaultWindow, px, py)
		return m.canvas.String()
	case "ux":
		f, _ = s.Displacement()
	case "uy":
		_, f = s.Displacement()
	case "sxx":
		f = s.Stress().Sxx
	case "syy":
		f = s.Stress().Syy
	case "sxy":
		f = s.Stress().Sxy
	default:
		f = elastic.VonMises(s.Stress(), s.Config().Material.Poisson)
	}
	return Heatmap(f, canvasWidth/2, canvasHeight-1)
}

func scaled(f *mat.Dense, k float64) *mat.Dense {
	var out mat.Dense
	out.Scale(k, f)
	return &out
}

func logTail(trace []float64, n int) []float64 {
	if len(trace) > n {
		trace = trace[len(trace)-n:]
	}
	out := make([]float64, 0, len(trace))
	for _, r := range trace {
		if r > 0 && !math.IsInf(r, 0) {
			out = append(out, math.Log10(r))
		}
	}
	return out
}

func (m Model) View() string {
	st := newStyles(Themes[m.theme])
	s := m.solver
	cfg := s.Config()
	trace := s.Trace()

	var b strings.Builder
	b.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")
	b.WriteString(m.status(st) + "\n")

	if tail := logTail(trace, graphWindow); len(tail) > 1 {
		chart := asciigraph.Plot(tail, asciigraph.Height(6), asciigraph.Width(36), asciigraph.Caption("log10 residual"))
		b.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		b.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	frac := float64(s.Iteration()) / float64(cfg.Iterations)
	row("Iteration", fmt.Sprintf("%d/%d", s.Iteration(), cfg.Iterations))
	row("", ProgressBar(frac, 30))
	if len(trace) > 0 {
		last := trace[len(trace)-1]
		row("Residual", fmt.Sprintf("%.4e", last))
		row("Decay", fmt.Sprintf("%.3e", last/trace[0]))
	}
	_, uy := s.Displacement()
	row("Max |uy|", fmt.Sprintf("%.4f", grid.MaxAbs(uy)))
	row("Step", fmt.Sprintf("%.3e", cfg.StepSize))
	row("Field", Fields[m.field])
	row("Exaggerate", fmt.Sprintf("x%g", m.exaggerate))
	row("Batch", fmt.Sprintf("%d/frame", m.batch))
	row("Theme", Themes[m.theme].Name)
	if m.err != nil {
		b.WriteString("\n" + st.bad.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + Sparkline(logTail(trace, len(trace)), 36) + "\n")
	b.WriteString(st.help.Render("SP:Pause R:Reset F:Field T:Theme\n+/-:Exaggerate ,/.:Speed ?:Help Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, st.picture.Render(m.picture()), st.stats.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

const helpText = `
  Space   pause or resume relaxation
  R       reset to zero deformation
  F       cycle displayed field
  T       cycle colour theme
  + / -   double or halve displacement exaggeration
  . / ,   double or halve iterations per frame
  ?       toggle this help
  Q       quit
`

// RunLive opens the live view for s and blocks until the user quits.
func RunLive(s *relax.Solver, name string, fps int) error {
	_, err := tea.NewProgram(NewModel(s, name, fps), tea.WithAltScreen()).Run()
	return err
}
