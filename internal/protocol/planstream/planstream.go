package planstream

import "github.com/gridpilot/gridpilot/internal/grid"

// Event names emitted by the generation backend. Any other name is legal
// on the wire and simply carries no client-side action.
const (
	EventPlan    = "plan"
	EventStep    = "step"
	EventDone    = "done"
	EventBlocked = "blocked"
	EventError   = "error"
	EventStats   = "stats"
)

// Blocked reasons distinguished by the client.
const (
	ReasonObstacle       = "obstacle"
	ReasonGoalNotReached = "goal_not_reached"
)

// Request is the body POSTed to /plan. Coordinates travel as [x, y]
// pairs. Optional fields are omitted entirely when unset so the server
// can apply its own defaults.
type Request struct {
	Start            *[2]int  `json:"start,omitempty"`
	Goal             [2]int   `json:"goal"`
	Blocked          [][2]int `json:"blocked"`
	Instruction      string   `json:"instruction"`
	RunID            string   `json:"runId"`
	Model            string   `json:"model,omitempty"`
	Verbosity        string   `json:"verbosity,omitempty"`
	Thinking         string   `json:"thinking,omitempty"`
	DeveloperMessage string   `json:"developerMessage,omitempty"`
}

// Action is one directional move as it appears on the wire. Steps is a
// float because the backend is not trusted to send integers.
type Action struct {
	Dir   string  `json:"dir"`
	Steps float64 `json:"steps"`
}

// Plan is the payload of a "plan" event.
type Plan struct {
	Plan  []Action `json:"plan"`
	Notes string   `json:"notes,omitempty"`
}

// Step is the payload of a "step" event: one executed micro-step. I is
// the server-assigned execution index.
type Step struct {
	X   int    `json:"x"`
	Y   int    `json:"y"`
	Dir string `json:"dir"`
	I   int    `json:"i"`
}

// Blocked is the payload of a "blocked" event.
type Blocked struct {
	Reason string `json:"reason,omitempty"`
}

// Error is the payload of an "error" event.
type Error struct {
	Message string `json:"message,omitempty"`
}

// Stats is the payload of a "stats" event, the server's end-of-run
// report. Nullable fields stay nil when the server could not compute
// them.
type Stats struct {
	RunID             string     `json:"runId"`
	Attempts          int        `json:"attempts"`
	StepsExecuted     int        `json:"stepsExecuted"`
	OptimalPathLength *int       `json:"optimalPathLength"`
	Surcout           *int       `json:"surcout"`
	Success           bool       `json:"success"`
	FinalPosition     grid.Coord `json:"finalPosition"`
	Ambiguity         string     `json:"ambiguity,omitempty"`
}
