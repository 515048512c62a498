package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/protocol/planstream"
)

// Request describes one execution. Only Instruction and Goal are
// required; a nil Start means the fixed origin.
type Request struct {
	Instruction      string
	Goal             grid.Coord
	Blocked          []grid.Coord
	RunID            string
	Start            *grid.Coord
	Model            string
	Verbosity        string
	Thinking         string
	DeveloperMessage string
}

type planRequestBody = planstream.Request

// buildBody assembles the outbound wire body. Blocked cells are
// serialized as [x, y] pairs; optional fields stay absent when unset so
// the server applies its own defaults.
func buildBody(req Request) (planRequestBody, error) {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return planRequestBody{}, ErrEmptyInstruction
	}
	body := planRequestBody{
		Goal:             [2]int{req.Goal.X, req.Goal.Y},
		Blocked:          make([][2]int, 0, len(req.Blocked)),
		Instruction:      instruction,
		RunID:            req.RunID,
		Model:            req.Model,
		Verbosity:        req.Verbosity,
		Thinking:         req.Thinking,
		DeveloperMessage: strings.TrimSpace(req.DeveloperMessage),
	}
	for _, cell := range req.Blocked {
		body.Blocked = append(body.Blocked, [2]int{cell.X, cell.Y})
	}
	if req.Start != nil {
		start := [2]int{req.Start.X, req.Start.Y}
		body.Start = &start
	}
	if body.RunID == "" {
		body.RunID = fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return body, nil
}
