package engine

import (
	"time"

	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/protocol/eventstream"
	"github.com/gridpilot/gridpilot/internal/protocol/planstream"
)

// Messages surfaced to the caller. A failed run always leaves one of
// these (or the server's own text) in the snapshot.
const (
	msgSuccess         = "Goal reached."
	msgBlockedObstacle = "Run stopped: an obstacle is in the way."
	msgBlockedGoal     = "Run stopped: the goal was not reached."
	msgBlockedGeneric  = "Run stopped before completion."
	msgErrorGeneric    = "The planner reported an error."
	msgStreamTruncated = "The planner stream ended unexpectedly."
)

// dispatch applies one frame to the run. It returns true when the
// stream loop should stop: the run was superseded, torn down, or the
// stats frame arrived (the practical end-of-stream signal). Once the run
// reaches a terminal state only the stats frame is still applied; any
// other late frame is ignored so it cannot move the run out of that
// state or grow the trail.
func (e *Engine) dispatch(r *run, f eventstream.Frame) (stop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.current != r || r.aborted {
		return true
	}
	if r.status != StatusRunning && f.Event != planstream.EventStats {
		return false
	}

	switch f.Event {
	case planstream.EventPlan:
		r.plan, r.notes = sanitizePlan(f.Data.Value())

	case planstream.EventStep:
		step, ok := sanitizeStep(f.Data.Value())
		if !ok {
			return false
		}
		if _, seen := r.visited[step.cell.Key()]; seen {
			return false
		}
		r.visited[step.cell.Key()] = struct{}{}
		r.trail = append(r.trail, step.cell)

	case planstream.EventDone:
		r.status = StatusSuccess
		r.message = msgSuccess

	case planstream.EventBlocked:
		r.status = StatusBlocked
		r.message = blockedMessage(f.Data)

	case planstream.EventError:
		r.status = StatusError
		r.message = errorMessage(f.Data)

	case planstream.EventStats:
		var payload planstream.Stats
		if err := f.Data.Unmarshal(&payload); err != nil {
			e.logger.Warn("undecodable stats payload", "error", err)
		} else {
			elapsed := time.Since(r.startedAt).Milliseconds()
			if elapsed < 0 {
				elapsed = 0
			}
			r.stats = &Stats{Stats: payload, DurationMs: float64(elapsed)}
		}
		stop = true

	default:
		// Unknown event names are tolerated for forward compatibility.
		return false
	}

	e.notifyLocked()
	return stop
}

func blockedMessage(p eventstream.Payload) string {
	if obj, ok := p.Object(); ok {
		switch obj["reason"] {
		case planstream.ReasonObstacle:
			return msgBlockedObstacle
		case planstream.ReasonGoalNotReached:
			return msgBlockedGoal
		}
	}
	return msgBlockedGeneric
}

func errorMessage(p eventstream.Payload) string {
	if obj, ok := p.Object(); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return msgErrorGeneric
}

// stepEvent is a validated "step" payload.
type stepEvent struct {
	cell grid.Coord
	dir  grid.Direction
}
