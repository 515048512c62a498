// Package sim is a scripted generation backend for development and
// end-to-end tests. It does not understand natural language: explicit
// moves in the instruction ("right 3 down 2") become the plan verbatim,
// anything else is routed straight to the goal. It then walks the plan
// cell by cell and reports the outcome over the wire protocol.
package sim

import (
	"strconv"
	"strings"

	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/protocol/planstream"
)

// Walk is the outcome of executing a plan against the grid.
type Walk struct {
	Plan    []planstream.Action
	Notes   string
	Steps   []planstream.Step
	Final   grid.Coord
	Success bool
	// Reason is set when Success is false: obstacle or goal_not_reached.
	Reason string
}

// Run plans and executes one instruction. The walk stops at the first
// blocked or out-of-bounds cell.
func Run(instruction string, start, goal grid.Coord, blocked []grid.Coord) Walk {
	w := Walk{Final: start}
	w.Plan, w.Notes = plan(instruction, start, goal)

	obstacles := make(map[string]struct{}, len(blocked))
	for _, cell := range blocked {
		obstacles[cell.Key()] = struct{}{}
	}

	pos := start
	index := 0
	for _, action := range w.Plan {
		dx, dy := grid.Direction(action.Dir).Delta()
		for i := 0; i < int(action.Steps); i++ {
			next := grid.Coord{X: pos.X + dx, Y: pos.Y + dy}
			if _, hit := obstacles[next.Key()]; hit || !next.InBounds() {
				w.Final = pos
				w.Reason = planstream.ReasonObstacle
				return w
			}
			pos = next
			w.Steps = append(w.Steps, planstream.Step{X: pos.X, Y: pos.Y, Dir: action.Dir, I: index})
			index++
		}
	}

	w.Final = pos
	if pos == goal {
		w.Success = true
	} else {
		w.Reason = planstream.ReasonGoalNotReached
	}
	return w
}

// Stats builds the end-of-run report. Optimal length and surcout are
// only known for successful runs.
func (w Walk) Stats(runID string, start, goal grid.Coord) planstream.Stats {
	stats := planstream.Stats{
		RunID:         runID,
		Attempts:      1,
		StepsExecuted: len(w.Steps),
		Success:       w.Success,
		FinalPosition: w.Final,
	}
	if w.Success {
		optimal := abs(goal.X-start.X) + abs(goal.Y-start.Y)
		surcout := len(w.Steps) - optimal
		stats.OptimalPathLength = &optimal
		stats.Surcout = &surcout
	}
	if w.Notes != "" {
		stats.Ambiguity = w.Notes
	}
	return stats
}

// plan derives the action list. Explicit "<dir> <count>" pairs in the
// instruction win; otherwise an L-shaped path to the goal is produced
// and the routing is flagged in the notes.
func plan(instruction string, start, goal grid.Coord) ([]planstream.Action, string) {
	if actions := parseMoves(instruction); len(actions) > 0 {
		return actions, ""
	}
	var actions []planstream.Action
	if dx := goal.X - start.X; dx != 0 {
		dir := grid.Right
		if dx < 0 {
			dir = grid.Left
		}
		actions = append(actions, planstream.Action{Dir: string(dir), Steps: float64(abs(dx))})
	}
	if dy := goal.Y - start.Y; dy != 0 {
		dir := grid.Down
		if dy < 0 {
			dir = grid.Up
		}
		actions = append(actions, planstream.Action{Dir: string(dir), Steps: float64(abs(dy))})
	}
	return actions, "instruction held no explicit moves; routed directly to the goal"
}

// parseMoves scans the instruction for direction words immediately
// followed by a count.
func parseMoves(instruction string) []planstream.Action {
	fields := strings.Fields(strings.ToLower(instruction))
	var actions []planstream.Action
	for i := 0; i+1 < len(fields); i++ {
		dir, ok := grid.ParseDirection(strings.Trim(fields[i], ".,;"))
		if !ok {
			continue
		}
		count, err := strconv.Atoi(strings.Trim(fields[i+1], ".,;"))
		if err != nil || count < 1 {
			continue
		}
		actions = append(actions, planstream.Action{Dir: string(dir), Steps: float64(count)})
		i++
	}
	return actions
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
