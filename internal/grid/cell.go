package grid

import "fmt"

// Cell is a planar grid coordinate.
// X increases to the right, Y increases downward (screen order).
type Cell struct {
	X int
	Y int
}

// C is a convenience constructor for Cell.
func C(x, y int) Cell {
	return Cell{X: x, Y: y}
}

// String returns a string representation of the cell.
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns the cell offset by another cell used as a delta.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Step returns the neighbor one step in the given direction.
func (c Cell) Step(d Dir) Cell {
	return c.Add(d.Delta())
}

// IsZero reports whether both components are zero.
func (c Cell) IsZero() bool {
	return c.X == 0 && c.Y == 0
}

// Dir is one of the four planar directions.
type Dir uint8

const (
	DirUp Dir = iota
	DirRight
	DirDown
	DirLeft
)

// Dirs lists every direction in clockwise order starting at Up.
var Dirs = [...]Dir{DirUp, DirRight, DirDown, DirLeft}

// String returns the string representation of a direction.
func (d Dir) String() string {
	switch d {
	case DirUp:
		return "Up"
	case DirRight:
		return "Right"
	case DirDown:
		return "Down"
	case DirLeft:
		return "Left"
	default:
		return "Unknown"
	}
}

// Delta returns the cell offset for one step in this direction.
// Up decreases Y, Down increases Y.
func (d Dir) Delta() Cell {
	switch d {
	case DirUp:
		return Cell{0, -1}
	case DirRight:
		return Cell{1, 0}
	case DirDown:
		return Cell{0, 1}
	case DirLeft:
		return Cell{-1, 0}
	default:
		return Cell{}
	}
}

// Opposite returns the opposite direction.
func (d Dir) Opposite() Dir {
	switch d {
	case DirUp:
		return DirDown
	case DirRight:
		return DirLeft
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return d
	}
}

// ParseDir converts a name such as "up" or "Left" to a Dir.
func ParseDir(s string) (Dir, bool) {
	switch s {
	case "up", "Up", "north":
		return DirUp, true
	case "right", "Right", "east":
		return DirRight, true
	case "down", "Down", "south":
		return DirDown, true
	case "left", "Left", "west":
		return DirLeft, true
	default:
		return 0, false
	}
}
