// Package tui is the full-screen dashboard for the plan-execution
// engine: an instruction prompt, a live grid with the trail, and the
// run's status, plan, notes, and stats.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gridpilot/gridpilot/internal/engine"
	"github.com/gridpilot/gridpilot/internal/grid"
)

type snapshotMsg struct {
	snap engine.Snapshot
}

type runDoneMsg struct {
	snap engine.Snapshot
	err  error
}

// Run launches the Bubble Tea dashboard against an engine the caller
// owns. It blocks until the user quits.
func Run(eng *engine.Engine, goal grid.Coord, blocked []grid.Coord) error {
	snapCh := make(chan engine.Snapshot, 16)
	unsubscribe, err := eng.Subscribe(snapCh)
	if err != nil {
		return err
	}
	defer unsubscribe()

	m := newModel(eng, goal, blocked, snapCh)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

type model struct {
	eng     *engine.Engine
	goal    grid.Coord
	blocked []grid.Coord
	snapCh  chan engine.Snapshot

	input   textinput.Model
	spin    spinner.Model
	snap    engine.Snapshot
	running bool
	lastErr error
}

func newModel(eng *engine.Engine, goal grid.Coord, blocked []grid.Coord, snapCh chan engine.Snapshot) model {
	input := textinput.New()
	input.Placeholder = "go right 3 then down 2"
	input.Prompt = "instruction> "
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return model{
		eng:     eng,
		goal:    goal,
		blocked: blocked,
		snapCh:  snapCh,
		input:   input,
		spin:    spin,
		snap:    eng.Snapshot(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitSnapshotCmd(m.snapCh))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.eng.Close()
			return m, tea.Quit
		case "esc":
			m.eng.Abort()
			return m, nil
		case "enter":
			if m.running {
				return m, nil
			}
			m.running = true
			m.lastErr = nil
			return m, tea.Batch(m.spin.Tick, executeCmd(m.eng, engine.Request{
				Instruction: m.input.Value(),
				Goal:        m.goal,
				Blocked:     m.blocked,
			}))
		}

	case snapshotMsg:
		m.snap = msg.snap
		return m, waitSnapshotCmd(m.snapCh)

	case runDoneMsg:
		m.running = false
		m.snap = msg.snap
		m.lastErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func executeCmd(eng *engine.Engine, req engine.Request) tea.Cmd {
	return func() tea.Msg {
		snap, err := eng.Execute(context.Background(), req)
		return runDoneMsg{snap: snap, err: err}
	}
}

func waitSnapshotCmd(ch <-chan engine.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{snap: <-ch}
	}
}
