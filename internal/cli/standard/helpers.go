package standard

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gridpilot/gridpilot/internal/grid"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// parseCoord reads an "x,y" cell reference.
func parseCoord(raw string) (grid.Coord, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return grid.Coord{}, fmt.Errorf("expected x,y but got %q", raw)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("invalid x in %q: %w", raw, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("invalid y in %q: %w", raw, err)
	}
	cell := grid.Coord{X: x, Y: y}
	if !cell.InBounds() {
		return grid.Coord{}, fmt.Errorf("cell %q is off the %dx%d grid", raw, grid.Size, grid.Size)
	}
	return cell, nil
}

func parseCoordList(raw []string) ([]grid.Coord, error) {
	cells := make([]grid.Coord, 0, len(raw))
	for _, item := range raw {
		cell, err := parseCoord(item)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}
