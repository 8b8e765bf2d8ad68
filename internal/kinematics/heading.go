package kinematics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/gridwalk/internal/grid"
)

// Axis identifies a world axis. X and Z are planar, Y is elevation.
type Axis uint8

const (
	AxisNone Axis = iota
	AxisX
	AxisY
	AxisZ
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case AxisNone:
		return "None"
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "Unknown"
	}
}

// index returns the world vector component the axis drives.
func (a Axis) index() int {
	switch a {
	case AxisX:
		return 0
	case AxisY:
		return 1
	case AxisZ:
		return 2
	default:
		panic(fmt.Sprintf("kinematics: axis %v has no vector component", a))
	}
}

// orthogonal returns the planar axis perpendicular to a.
// Only X and Z take part in planar movement; anything else is a logic bug.
func (a Axis) orthogonal() Axis {
	switch a {
	case AxisX:
		return AxisZ
	case AxisZ:
		return AxisX
	default:
		panic(fmt.Sprintf("kinematics: no planar axis orthogonal to %v", a))
	}
}

// Vec3i is an integer world-space vector used for headings.
type Vec3i struct {
	X, Y, Z int
}

// IsZero reports whether every component is zero.
func (v Vec3i) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Vec3 converts to a float vector.
func (v Vec3i) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// Mode tags which variant a Heading holds.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeFree
	ModeAxisLocked
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeFree:
		return "free"
	case ModeAxisLocked:
		return "axis-locked"
	default:
		return "none"
	}
}

// Heading is the agent's intended direction of travel. It is either a free
// integer velocity or a single forward axis with a direction.
// The zero value is a heading that never moves.
type Heading struct {
	mode      Mode
	velocity  Vec3i
	axis      Axis
	direction int
}

// FreeVelocity returns a free-velocity heading. Components scale the agent
// speed per axis; the elevation component is carried but never walked.
func FreeVelocity(v Vec3i) Heading {
	return Heading{mode: ModeFree, velocity: v}
}

// AxisLocked returns a heading along a single forward axis.
// The vector must have exactly one component equal to +1 or -1 and the others
// zero. Vertical forwards are rejected; agents move on the X/Z plane only.
func AxisLocked(forward Vec3i) (Heading, error) {
	axis, dir, ok := unitAxis(forward)
	if !ok {
		return Heading{}, fmt.Errorf("%w: %+v", ErrInvalidForward, forward)
	}
	if axis == AxisY {
		return Heading{}, fmt.Errorf("%w: %+v", ErrUnsupportedAxis, forward)
	}
	return Heading{
		mode:      ModeAxisLocked,
		velocity:  forward,
		axis:      axis,
		direction: dir,
	}, nil
}

// HeadingFor returns the axis-locked heading for a planar direction.
// Up and Down map to the Z axis.
func HeadingFor(d grid.Dir) Heading {
	delta := d.Delta()
	h, err := AxisLocked(Vec3i{X: delta.X, Z: delta.Y})
	if err != nil {
		panic(fmt.Sprintf("kinematics: direction %v has no heading: %v", d, err))
	}
	return h
}

// unitAxis reports the axis and sign of a single-axis unit vector.
func unitAxis(v Vec3i) (Axis, int, bool) {
	switch {
	case isUnit(v.X) && v.Y == 0 && v.Z == 0:
		return AxisX, v.X, true
	case v.X == 0 && isUnit(v.Y) && v.Z == 0:
		return AxisY, v.Y, true
	case v.X == 0 && v.Y == 0 && isUnit(v.Z):
		return AxisZ, v.Z, true
	default:
		return AxisNone, 0, false
	}
}

func isUnit(n int) bool {
	return n == 1 || n == -1
}

// Mode returns the heading variant.
func (h Heading) Mode() Mode {
	return h.mode
}

// Axis returns the forward axis for axis-locked headings, AxisNone otherwise.
func (h Heading) Axis() Axis {
	return h.axis
}

// Direction returns -1 or +1 for axis-locked headings, 0 otherwise.
func (h Heading) Direction() int {
	return h.direction
}

// Velocity returns the raw integer vector of the heading.
func (h Heading) Velocity() Vec3i {
	return h.velocity
}

// IsZero reports whether the heading cannot move the agent on the plane.
func (h Heading) IsZero() bool {
	return h.velocity.X == 0 && h.velocity.Z == 0
}

// Cell returns the planar cell offset of the neighbor ahead.
// Components are reduced to their sign so a fast free velocity still looks
// at the adjacent cell.
func (h Heading) Cell() grid.Cell {
	return grid.C(signInt(h.velocity.X), signInt(h.velocity.Z))
}

// Vector returns the planar world-space velocity per unit of speed.
func (h Heading) Vector() mgl64.Vec3 {
	return mgl64.Vec3{float64(h.velocity.X), 0, float64(h.velocity.Z)}
}

// planarAxis returns the single planar axis the heading moves along, its sign
// and magnitude. ok is false for diagonal or zero headings.
func (h Heading) planarAxis() (axis Axis, dir int, scale float64, ok bool) {
	x, z := h.velocity.X, h.velocity.Z
	switch {
	case x != 0 && z == 0:
		return AxisX, signInt(x), float64(absInt(x)), true
	case x == 0 && z != 0:
		return AxisZ, signInt(z), float64(absInt(z)), true
	default:
		return AxisNone, 0, 0, false
	}
}

// String describes the heading.
func (h Heading) String() string {
	switch h.mode {
	case ModeAxisLocked:
		sign := "+"
		if h.direction < 0 {
			sign = "-"
		}
		return sign + h.axis.String()
	case ModeFree:
		return fmt.Sprintf("v(%d,%d,%d)", h.velocity.X, h.velocity.Y, h.velocity.Z)
	default:
		return "none"
	}
}

func signInt(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
