// Package grid provides the walkability map agents move on and the mapping
// between continuous world positions and discrete cells.
// It has no dependencies on the terminal layer and is safe to use from pure
// simulation code.
package grid

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrOutOfBounds is returned when a lock targets a cell outside the grid.
	ErrOutOfBounds = errors.New("grid: cell out of bounds")
	// ErrInvalidSize is returned for negative grid dimensions.
	ErrInvalidSize = errors.New("grid: invalid size")
)

// Grid is a rectangular walkability map.
// Cells are stored in row-major order: index = y*width + x.
// A cell is walkable when it is inside the grid and not locked.
//
// Grid is not safe for concurrent use; lock mutations and agent steps that
// share a grid must be serialized by the caller's tick loop.
type Grid struct {
	width  int
	height int
	locked []bool
}

// New creates a grid with every cell walkable.
// Negative dimensions are treated as zero.
func New(width, height int) *Grid {
	g := &Grid{}
	//nolint:errcheck // dimensions are clamped, SetSize cannot fail
	g.SetSize(max(width, 0), max(height, 0))
	return g
}

// SetSize (re)allocates the backing storage and resets every cell to walkable.
func (g *Grid) SetSize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	g.width = width
	g.height = height
	g.locked = make([]bool, width*height)
	return nil
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// index converts in-bounds coordinates to a flat index.
func (g *Grid) index(x, y int) int {
	return y*g.width + x
}

// inBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// InBounds returns true if the cell is within the grid boundaries.
func (g *Grid) InBounds(c Cell) bool {
	return g.inBounds(c.X, c.Y)
}

// Lock sets or clears the locked flag of a cell.
// Locked cells are never walkable regardless of any prior state.
func (g *Grid) Lock(value bool, x, y int) error {
	if !g.inBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	g.locked[g.index(x, y)] = value
	return nil
}

// Unlock clears the locked flag of a cell.
func (g *Grid) Unlock(x, y int) error {
	return g.Lock(false, x, y)
}

// LockCell is Lock addressed by cell.
func (g *Grid) LockCell(value bool, c Cell) error {
	return g.Lock(value, c.X, c.Y)
}

// IsLocked reports the raw lock flag. Out-of-bounds cells report false.
func (g *Grid) IsLocked(x, y int) bool {
	if !g.inBounds(x, y) {
		return false
	}
	return g.locked[g.index(x, y)]
}

// IsWalkable returns false outside [0,width)x[0,height), otherwise the
// negation of the lock flag.
func (g *Grid) IsWalkable(x, y int) bool {
	if !g.inBounds(x, y) {
		return false
	}
	return !g.locked[g.index(x, y)]
}

// IsWalkableCell is IsWalkable addressed by cell.
func (g *Grid) IsWalkableCell(c Cell) bool {
	return g.IsWalkable(c.X, c.Y)
}

// LockedCount returns the number of locked cells.
func (g *Grid) LockedCount() int {
	count := 0
	for _, l := range g.locked {
		if l {
			count++
		}
	}
	return count
}

// WalkableNeighbors returns the directions whose neighbor cell is walkable,
// in clockwise order starting at Up.
func (g *Grid) WalkableNeighbors(c Cell) []Dir {
	dirs := make([]Dir, 0, len(Dirs))
	for _, d := range Dirs {
		if g.IsWalkableCell(c.Step(d)) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	locked := make([]bool, len(g.locked))
	copy(locked, g.locked)
	return &Grid{
		width:  g.width,
		height: g.height,
		locked: locked,
	}
}

// Scatter locks every currently walkable cell with the given probability,
// skipping the protected cells. Returns the number of cells locked.
// The same rng state always yields the same layout.
func (g *Grid) Scatter(rng *rand.Rand, density float64, protected ...Cell) int {
	if density <= 0 {
		return 0
	}
	keep := make(map[Cell]bool, len(protected))
	for _, c := range protected {
		keep[c] = true
	}

	n := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			i := g.index(x, y)
			if g.locked[i] || keep[C(x, y)] {
				continue
			}
			if rng.Float64() < density {
				g.locked[i] = true
				n++
			}
		}
	}
	return n
}

// Select projects every cell into dst using fn, which receives the lock flag.
// dst is indexed [x][y] and must be at least width x height.
// Returns the dimensions that were written as (height, width).
func Select[T any](g *Grid, fn func(locked bool) T, dst [][]T) (int, int) {
	for x := 0; x < g.width && x < len(dst); x++ {
		for y := 0; y < g.height && y < len(dst[x]); y++ {
			dst[x][y] = fn(g.locked[g.index(x, y)])
		}
	}
	return g.height, g.width
}
