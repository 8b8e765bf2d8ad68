package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidCellSize is returned for non-positive cell sizes.
var ErrInvalidCellSize = errors.New("grid: cell size must be positive")

// Mapping converts between world positions and grid cells.
// Implementations must be pure and satisfy ToCell(Center(c)) == c.
//
// World space is three dimensional; X and Z are planar and Y is elevation,
// which never takes part in cell lookups.
type Mapping interface {
	// ToCell returns the cell containing a world position.
	ToCell(pos mgl64.Vec3) Cell
	// ToWorld returns a world point representing the cell (its min corner).
	ToWorld(c Cell) mgl64.Vec3
	// Center returns the canonical center of the cell.
	Center(c Cell) mgl64.Vec3
}

// Uniform maps square cells of equal size laid out from Origin.
// World X maps to cell X and world Z maps to cell Y.
type Uniform struct {
	Origin   mgl64.Vec3
	CellSize float64
}

// NewUniform creates a mapping with the origin at zero.
func NewUniform(cellSize float64) (Uniform, error) {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return Uniform{}, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}
	return Uniform{CellSize: cellSize}, nil
}

// ToCell returns the cell containing pos.
func (u Uniform) ToCell(pos mgl64.Vec3) Cell {
	return Cell{
		X: int(math.Floor((pos.X() - u.Origin.X()) / u.CellSize)),
		Y: int(math.Floor((pos.Z() - u.Origin.Z()) / u.CellSize)),
	}
}

// ToWorld returns the min corner of the cell at origin elevation.
func (u Uniform) ToWorld(c Cell) mgl64.Vec3 {
	return mgl64.Vec3{
		u.Origin.X() + float64(c.X)*u.CellSize,
		u.Origin.Y(),
		u.Origin.Z() + float64(c.Y)*u.CellSize,
	}
}

// Center returns the middle of the cell at origin elevation.
func (u Uniform) Center(c Cell) mgl64.Vec3 {
	half := u.CellSize / 2
	return u.ToWorld(c).Add(mgl64.Vec3{half, 0, half})
}

var _ Mapping = Uniform{}
