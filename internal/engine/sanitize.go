package engine

import (
	"math"

	"github.com/gridpilot/gridpilot/internal/grid"
)

const (
	minSteps = 1
	maxSteps = 20
)

// sanitizePlan validates a raw "plan" payload. A payload that is not an
// object, or whose plan field is not a list, yields an empty plan; that
// is not a fault. Invalid entries are dropped individually, preserving
// the order of the valid ones. Steps are rounded and clamped to
// [minSteps, maxSteps].
func sanitizePlan(v any) ([]Action, string) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ""
	}
	notes, _ := obj["notes"].(string)
	rawList, ok := obj["plan"].([]any)
	if !ok {
		return nil, notes
	}
	actions := make([]Action, 0, len(rawList))
	for _, raw := range rawList {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		dirRaw, _ := entry["dir"].(string)
		dir, ok := grid.ParseDirection(dirRaw)
		if !ok {
			continue
		}
		steps, ok := entry["steps"].(float64)
		if !ok || math.IsNaN(steps) || math.IsInf(steps, 0) {
			continue
		}
		n := int(math.Round(steps))
		if n < minSteps {
			n = minSteps
		} else if n > maxSteps {
			n = maxSteps
		}
		actions = append(actions, Action{Dir: dir, Steps: n})
	}
	return actions, notes
}

// sanitizeStep validates a raw "step" payload. Anything without numeric
// coordinates and a recognized direction is dropped, not an error.
func sanitizeStep(v any) (stepEvent, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return stepEvent{}, false
	}
	x, ok := obj["x"].(float64)
	if !ok {
		return stepEvent{}, false
	}
	y, ok := obj["y"].(float64)
	if !ok {
		return stepEvent{}, false
	}
	dirRaw, _ := obj["dir"].(string)
	dir, ok := grid.ParseDirection(dirRaw)
	if !ok {
		return stepEvent{}, false
	}
	return stepEvent{
		cell: grid.Coord{X: int(x), Y: int(y)},
		dir:  dir,
	}, true
}
