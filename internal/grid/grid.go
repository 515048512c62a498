package grid

import "strconv"

// Size is the number of cells along each axis of the square grid.
const Size = 10

// Coord identifies a single cell. The origin is the top-left corner; Y
// grows downward.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Origin is the default start cell for a run.
var Origin = Coord{X: 0, Y: 0}

// Key returns the canonical string form of the cell, used to keep
// visitation sets stable across equal coordinates.
func (c Coord) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

// InBounds reports whether the cell lies on the grid.
func (c Coord) InBounds() bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

// Direction is one of the four cardinal moves.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// ParseDirection validates a raw direction string.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Left, Right, Up, Down:
		return Direction(s), true
	}
	return "", false
}

// Delta returns the per-step coordinate change for the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	}
	return 0, 0
}
