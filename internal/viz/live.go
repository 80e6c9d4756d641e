package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/logging"
	"github.com/san-kum/orrery/internal/render"
	"github.com/san-kum/orrery/internal/sim"
)

const (
	width  = 80
	height = 24

	// Scale is the number of virtual pixels per braille dot.
	Scale = 6.0

	headerRows = 2
	footerRows = 2
	speedBar   = 12
)

type TickMsg time.Time

// Deps are the optional collaborators of a terminal session.
type Deps struct {
	Log       logging.Logger
	Observers []sim.Observer
}

// Model drives a simulation context from terminal events and draws it on a
// braille canvas.
type Model struct {
	sim    *sim.Context
	pipe   *render.Pipeline
	canvas *Canvas
	epoch  time.Time
	fps    int

	frame    sim.Frame
	theme    Theme
	styles   Styles
	showHelp bool
}

// NewModel builds a model for cfg. The simulation size follows the canvas.
func NewModel(cfg *config.Config, deps Deps) Model {
	log := deps.Log
	if log == nil {
		log = logging.Noop()
	}
	canvas := NewCanvas(width, height-headerRows-footerRows, Scale)
	w, h := canvas.Size()

	ctx := sim.New(cfg, sim.WithLogger(log), sim.WithSize(w, h))
	ctx.AddObserver(sim.NewLogObserver(log))
	for _, o := range deps.Observers {
		ctx.AddObserver(o)
	}

	epoch, _ := cfg.EpochTime()
	fps := cfg.Window.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	theme := ThemeDeepSpace
	return Model{
		sim:    ctx,
		pipe:   render.NewPipeline(render.ThemeFrom(cfg)),
		canvas: canvas,
		epoch:  epoch,
		fps:    fps,
		frame:  ctx.Last(),
		theme:  theme,
		styles: NewStyles(theme),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update maps terminal events onto intents and runs a frame on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.sim.Post(sim.TogglePause{})
		case "r":
			m.sim.Post(sim.ResetView{})
		case "+", "=":
			m.sim.Post(sim.AdjustSpeed{Steps: 1})
		case "-", "_":
			m.sim.Post(sim.AdjustSpeed{Steps: -1})
		case "enter", "esc":
			m.sim.Post(sim.Dismiss{})
		case "?", "h":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.WindowSizeMsg:
		m.canvas.Resize(msg.Width, max(1, msg.Height-headerRows-footerRows))
		w, h := m.canvas.Size()
		m.sim.Post(sim.Resize{Width: w, Height: h})
	case TickMsg:
		m.frame = m.sim.Frame()
		m.pipe.Draw(m.canvas, m.sim, m.frame)
		return m, m.tick()
	}
	return m, nil
}

// mouse translates a cell position below the header into canvas pixels.
func (m *Model) mouse(msg tea.MouseMsg) {
	p := m.canvas.Cell(msg.X, msg.Y-headerRows)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.sim.Post(sim.Wheel{Delta: -1})
	case msg.Button == tea.MouseButtonWheelDown:
		m.sim.Post(sim.Wheel{Delta: 1})
	case msg.Action == tea.MouseActionMotion:
		m.sim.Post(sim.PointerMove{X: p.X, Y: p.Y})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.sim.Post(sim.PointerMove{X: p.X, Y: p.Y})
		m.sim.Post(sim.Click{X: p.X, Y: p.Y})
	}
}

func (m Model) View() string {
	f := m.frame
	hud := render.NewHUD(f, m.epoch)
	st := m.styles

	status := st.Running.Render(strings.ToUpper(hud.Status))
	if f.Paused {
		status = st.Paused.Render(strings.ToUpper(hud.Status))
	}
	header := []string{
		GradientText("ORRERY", m.theme.Primary, m.theme.Secondary),
		st.Value.Render(hud.Day),
	}
	if hud.Date != "" {
		header = append(header, st.Label.Render(hud.Date))
	}
	header = append(header, status)
	if hud.Focus != "" {
		header = append(header, st.Focus.Render(hud.Focus))
	}

	speed := m.sim.Speed()
	frac := 0.0
	if speed.Max > speed.Min {
		frac = (f.Multiplier - speed.Min) / (speed.Max - speed.Min)
	}
	info := st.Label.Render("speed ") + st.Value.Render(ProgressBar(frac, speedBar)+" "+hud.Speed) +
		st.Label.Render(fmt.Sprintf("   zoom %.2f", f.View.Zoom))

	var s strings.Builder
	s.WriteString(strings.Join(header, "  ") + "\n")
	s.WriteString(info + "\n")

	body := m.canvas.Render()
	if f.Inspecting != nil {
		body = lipgloss.Place(m.canvas.Width, m.canvas.Height, lipgloss.Center, lipgloss.Center, m.modal(f))
	}
	s.WriteString(body + "\n")
	s.WriteString(st.KeyHint.Render(m.help()))
	return s.String()
}

func (m Model) modal(f sim.Frame) string {
	b := f.Inspecting
	st := m.styles
	name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(hexOf(b.Color))).Render(b.Name)
	content := lipgloss.JoinVertical(lipgloss.Left,
		name,
		"",
		st.Fact.Render(b.Fact),
		"",
		st.KeyHint.Render("press enter to close"),
	)
	return st.Modal.Render(content)
}

func (m Model) help() string {
	if !m.showHelp {
		return "? help  q quit"
	}
	return "click follow/inspect  wheel zoom  space pause  r reset  +/- speed  t theme  enter close  q quit"
}

// Run starts the terminal session and blocks until the user quits or ctx is
// done.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	p := tea.NewProgram(NewModel(cfg, deps),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal session: %w", err)
	}
	return nil
}
