package perftop

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// frameMsg carries a frame from a widget loop to the UI goroutine.
type frameMsg struct {
	id    int
	frame Frame
}

type keyMap struct {
	Quit  key.Binding
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
}

var keys = keyMap{
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	Left:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous")),
	Right: key.NewBinding(key.WithKeys("l", "right", "tab"), key.WithHelp("l/→", "next")),
	Up:    key.NewBinding(key.WithKeys("k", "up")),
	Down:  key.NewBinding(key.WithKeys("j", "down")),
}

type dashboardModel struct {
	title        string
	grid         GridOptions
	widgets      []Widget
	frames       map[int]Frame
	selectedPane int
	width        int
	height       int
	ready        bool
}

func newDashboardModel(d *Dashboard, widgets []Widget) dashboardModel {
	return dashboardModel{
		title:   fmt.Sprintf("perftop: %s @ %s", d.Name, d.Endpoint),
		grid:    d.GridOptions,
		widgets: widgets,
		frames:  make(map[int]Frame, len(widgets)),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.Down):
			if len(m.widgets) > 0 {
				m.selectedPane = (m.selectedPane + 1) % len(m.widgets)
			}
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Up):
			if len(m.widgets) > 0 {
				m.selectedPane = (m.selectedPane - 1 + len(m.widgets)) % len(m.widgets)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case frameMsg:
		m.frames[msg.id] = msg.frame
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// one line for the status bar
	height := max(m.height-1, 1)
	canvas := NewCanvas(m.width, height)
	for i, w := range m.widgets {
		rect := GridRect(m.grid, w.Position, m.width, height)
		pane := NewPane(w.Title, rect.Width(), rect.Height()).SetFocused(i == m.selectedPane)
		cw, ch := pane.ContentSize()
		canvas.Place(rect.X0, rect.Y0, pane.SetContent(renderFrame(m.frames[w.ID], cw, ch)).Render())
	}

	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Width(m.width).
		MaxWidth(m.width).
		Align(lipgloss.Center).
		Render(m.title + "  hjkl/arrows=Focus  q=Quit")

	return canvas.String() + "\n" + helpBar
}

// teaSink hands frames to a running bubbletea program.
type teaSink struct {
	program *tea.Program
}

func (s teaSink) Push(id int, frame Frame) {
	s.program.Send(frameMsg{id: id, frame: frame})
}

// RunTeaDashboard draws the dashboard with bubbletea until the user quits or ctx is done.
func RunTeaDashboard(ctx context.Context, d *Dashboard, sched *Scheduler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newDashboardModel(d, sched.Widgets()), tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx, teaSink{program: p})
	})

	_, err := p.Run()
	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
