package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gridpilot/gridpilot/internal/grid"
)

func TestBuildBodyRejectsEmptyInstruction(t *testing.T) {
	for _, instruction := range []string{"", "   ", "\n\t"} {
		_, err := buildBody(Request{Instruction: instruction, Goal: grid.Coord{X: 3, Y: 2}})
		if !errors.Is(err, ErrEmptyInstruction) {
			t.Fatalf("instruction %q: err = %v", instruction, err)
		}
	}
}

func TestBuildBodyWireFormat(t *testing.T) {
	start := grid.Coord{X: 1, Y: 1}
	body, err := buildBody(Request{
		Instruction: "  go right 3  ",
		Goal:        grid.Coord{X: 3, Y: 2},
		Blocked:     []grid.Coord{{X: 2, Y: 0}, {X: 4, Y: 4}},
		Start:       &start,
		RunID:       "run-42",
		Model:       "nav-small",
	})
	if err != nil {
		t.Fatalf("build body: %v", err)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	encoded := string(raw)

	if !strings.Contains(encoded, `"instruction":"go right 3"`) {
		t.Fatalf("instruction not trimmed: %s", encoded)
	}
	if !strings.Contains(encoded, `"blocked":[[2,0],[4,4]]`) {
		t.Fatalf("blocked cells must serialize as pairs: %s", encoded)
	}
	if !strings.Contains(encoded, `"start":[1,1]`) || !strings.Contains(encoded, `"goal":[3,2]`) {
		t.Fatalf("coordinates must serialize as pairs: %s", encoded)
	}
	for _, absent := range []string{"verbosity", "thinking", "developerMessage"} {
		if strings.Contains(encoded, absent) {
			t.Fatalf("unset optional field %q must be omitted: %s", absent, encoded)
		}
	}
	if !strings.Contains(encoded, `"model":"nav-small"`) {
		t.Fatalf("set optional field lost: %s", encoded)
	}
}

func TestBuildBodyDefaults(t *testing.T) {
	body, err := buildBody(Request{Instruction: "go", Goal: grid.Coord{X: 1, Y: 0}})
	if err != nil {
		t.Fatalf("build body: %v", err)
	}
	if body.Start != nil {
		t.Fatalf("unset start must stay absent, got %v", body.Start)
	}
	if body.RunID == "" {
		t.Fatalf("run id should be generated when empty")
	}
	raw, _ := json.Marshal(body)
	if !strings.Contains(string(raw), `"blocked":[]`) {
		t.Fatalf("blocked should encode as an empty list: %s", raw)
	}
}
