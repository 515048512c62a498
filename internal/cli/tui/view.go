package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridpilot/gridpilot/internal/engine"
	"github.com/gridpilot/gridpilot/internal/grid"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	gridStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	goalStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	obstacleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	trailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	headStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))

	statusStyles = map[engine.Status]lipgloss.Style{
		engine.StatusIdle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		engine.StatusRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		engine.StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		engine.StatusBlocked: lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		engine.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("GRIDPILOT :: Plan Runner"))
	b.WriteString("  (enter run, esc abort, ctrl+c quit)\n\n")

	b.WriteString(gridStyle.Render(m.renderGrid()))
	b.WriteString("\n\n")

	status := string(m.snap.Status)
	if style, ok := statusStyles[m.snap.Status]; ok {
		status = style.Render(status)
	}
	if m.running {
		status += " " + m.spin.View()
	}
	b.WriteString("Status: " + status + "\n")
	if m.snap.Message != "" {
		b.WriteString("Message: " + m.snap.Message + "\n")
	}
	if len(m.snap.Plan) > 0 {
		moves := make([]string, 0, len(m.snap.Plan))
		for _, action := range m.snap.Plan {
			moves = append(moves, fmt.Sprintf("%s x%d", action.Dir, action.Steps))
		}
		b.WriteString("Plan: " + strings.Join(moves, ", ") + "\n")
	}
	if m.snap.Notes != "" {
		b.WriteString("Notes: " + m.snap.Notes + "\n")
	}
	if m.snap.Stats != nil {
		b.WriteString(fmt.Sprintf("Stats: success=%t steps=%d duration=%.0fms\n",
			m.snap.Stats.Success, m.snap.Stats.StepsExecuted, m.snap.Stats.DurationMs))
	}
	if m.lastErr != nil {
		b.WriteString(errStyle.Render("Error: "+m.lastErr.Error()) + "\n")
	}

	b.WriteString("\n" + m.input.View() + "\n")
	return b.String()
}

func (m model) renderGrid() string {
	obstacles := make(map[string]struct{}, len(m.blocked))
	for _, cell := range m.blocked {
		obstacles[cell.Key()] = struct{}{}
	}
	visited := make(map[string]struct{}, len(m.snap.Trail))
	for _, cell := range m.snap.Trail {
		visited[cell.Key()] = struct{}{}
	}
	var head grid.Coord
	hasHead := len(m.snap.Trail) > 0
	if hasHead {
		head = m.snap.Trail[len(m.snap.Trail)-1]
	}

	var rows []string
	for y := 0; y < grid.Size; y++ {
		var row strings.Builder
		for x := 0; x < grid.Size; x++ {
			cell := grid.Coord{X: x, Y: y}
			switch {
			case hasHead && cell == head:
				row.WriteString(headStyle.Render("@ "))
			case cell == m.goal:
				row.WriteString(goalStyle.Render("◎ "))
			case contains(obstacles, cell):
				row.WriteString(obstacleStyle.Render("█ "))
			case contains(visited, cell):
				row.WriteString(trailStyle.Render("· "))
			default:
				row.WriteString(emptyStyle.Render(". "))
			}
		}
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}

func contains(set map[string]struct{}, cell grid.Coord) bool {
	_, ok := set[cell.Key()]
	return ok
}
