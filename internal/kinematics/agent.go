// Package kinematics moves an agent across a walkability grid one tick at a
// time. Motion is continuous in world space but every stop happens exactly on
// a cell center, so direction changes never cut corners and the agent never
// rests half-way into a wall.
//
// The package is deterministic and does no I/O. An Agent is not safe for
// concurrent use and expects exactly one step call per simulation tick.
package kinematics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/gridwalk/internal/grid"
)

// Epsilon is the distance below which a position counts as being on a
// cell center.
const Epsilon = 1e-6

var (
	// ErrInvalidForward is returned when a forward vector is not a single-axis
	// unit vector.
	ErrInvalidForward = errors.New("kinematics: forward must be a single-axis unit vector")
	// ErrUnsupportedAxis is returned for vertical headings.
	ErrUnsupportedAxis = errors.New("kinematics: vertical axis is not supported")
	// ErrInvalidSpeed is returned for negative or non-finite speeds.
	ErrInvalidSpeed = errors.New("kinematics: speed must be a finite non-negative number")
)

// Walkable answers whether a cell can be entered.
type Walkable interface {
	IsWalkableCell(c grid.Cell) bool
}

// State describes what the last step did.
type State uint8

const (
	// StateIdle means there was no motion budget (zero speed, heading or dt).
	StateIdle State = iota
	// StateMoving means free translation along the heading.
	StateMoving
	// StateAligning means the agent closed in on the lane center of the
	// orthogonal axis before turning.
	StateAligning
	// StateArresting means the cell ahead is blocked and the agent is
	// closing in on its cell center.
	StateArresting
	// StateSettled means the agent rests on the center of a cell whose
	// neighbor ahead is blocked.
	StateSettled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMoving:
		return "moving"
	case StateAligning:
		return "aligning"
	case StateArresting:
		return "arresting"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Agent holds a heading and speed and advances a world position against a
// walkability grid. The grid and mapping are borrowed, not owned.
type Agent struct {
	walk    Walkable
	mapping grid.Mapping
	heading Heading
	speed   float64
	state   State
	driving Axis
	stride  float64 // Longest sub-step that cannot skip a cell
}

// Option configures an Agent.
type Option func(*Agent)

// WithSpeed sets the initial speed in world units per second.
// Invalid speeds are ignored; use SetSpeed to get an error.
func WithSpeed(speed float64) Option {
	return func(a *Agent) {
		//nolint:errcheck // option form keeps the previous speed on error
		a.SetSpeed(speed)
	}
}

// WithHeading sets the initial heading.
func WithHeading(h Heading) Option {
	return func(a *Agent) {
		a.heading = h
	}
}

// New creates an agent bound to a walkability source and a coordinate mapping.
func New(walk Walkable, mapping grid.Mapping, opts ...Option) *Agent {
	if walk == nil || mapping == nil {
		panic("kinematics: agent needs a walkability source and a mapping")
	}
	a := &Agent{
		walk:    walk,
		mapping: mapping,
		stride:  strideOf(mapping),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Heading returns the current heading.
func (a *Agent) Heading() Heading {
	return a.heading
}

// SetHeading replaces the heading.
func (a *Agent) SetHeading(h Heading) {
	a.heading = h
}

// SetForward switches to an axis-locked heading along forward.
// The previous heading is kept when forward is rejected.
func (a *Agent) SetForward(forward Vec3i) error {
	h, err := AxisLocked(forward)
	if err != nil {
		return fmt.Errorf("kinematics: set forward: %w", err)
	}
	a.heading = h
	return nil
}

// SetVelocity switches to a free-velocity heading. The planar input is
// truncated toward zero to whole grid units; v[0] drives X and v[1] drives Z.
func (a *Agent) SetVelocity(v mgl64.Vec2) {
	a.heading = FreeVelocity(Vec3i{X: int(v[0]), Z: int(v[1])})
}

// Speed returns the speed in world units per second.
func (a *Agent) Speed() float64 {
	return a.speed
}

// SetSpeed sets the speed in world units per second.
func (a *Agent) SetSpeed(speed float64) error {
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	a.speed = speed
	return nil
}

// State returns what the last step did.
func (a *Agent) State() State {
	return a.state
}

// DrivingAxis returns the axis of the last free translation along a single
// axis, AxisNone before any.
func (a *Agent) DrivingAxis() Axis {
	return a.driving
}

// GetNextCell returns the cell one direction away from the cell at pos.
// It does not touch the agent.
func (a *Agent) GetNextCell(direction grid.Cell, pos mgl64.Vec3) grid.Cell {
	return a.mapping.ToCell(pos).Add(direction)
}

// CanMove reports whether the agent has room to move along its heading:
// the cell ahead is walkable, or the agent is not yet on its cell center.
func (a *Agent) CanMove(pos mgl64.Vec3) bool {
	if a.heading.IsZero() {
		return false
	}
	cell := a.mapping.ToCell(pos)
	if a.walk.IsWalkableCell(cell.Add(a.heading.Cell())) {
		return true
	}
	return a.centerOf(cell, pos).Sub(pos).LenSqr() > Epsilon*Epsilon
}

// Step advances pos by heading*speed*dt. Free translation stops on the
// center of the first cell whose neighbor ahead is blocked, and a blocked
// approach reports false once the agent rests on that center.
func (a *Agent) Step(dt time.Duration, pos mgl64.Vec3) (bool, mgl64.Vec3) {
	delta, _, ok := a.TryStepBudget(a.distance(dt), pos)
	return ok, pos.Add(delta)
}

// TryStep computes this tick's displacement without applying it.
//
// The displacement follows the heading through walkable cells and is capped
// on the center of the first cell whose neighbor ahead is blocked. The unused
// part of the budget is returned as remaining, expressed along the current
// heading. Callers may spend remaining on a different heading within the same
// tick, but its value is only meaningful for the heading it was computed with.
// remaining is zero when ok is false.
func (a *Agent) TryStep(dt time.Duration, pos mgl64.Vec3) (delta, remaining mgl64.Vec3, ok bool) {
	return a.TryStepBudget(a.distance(dt), pos)
}

// TryStepBudget is TryStep with the motion budget given as a world distance.
// It is used to re-issue leftover motion.
func (a *Agent) TryStepBudget(distance float64, pos mgl64.Vec3) (delta, remaining mgl64.Vec3, ok bool) {
	dir := a.heading.Vector()
	if distance <= 0 || dir.LenSqr() == 0 {
		a.state = StateIdle
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	dir = dir.Normalize()

	p, left, moved := pos, distance, false
	a.state = StateSettled
	for left > 0 {
		cell := a.mapping.ToCell(p)
		if a.aheadClear(cell) {
			seg := min(left, a.stride)
			p = p.Add(dir.Mul(seg))
			left -= seg
			moved = true
			a.state = StateMoving
			if axis, _, _, planar := a.heading.planarAxis(); planar {
				a.driving = axis
			}
			continue
		}

		center := a.centerOf(cell, p)
		toCenter := center.Sub(p)
		gap := toCenter.Len()
		if gap <= Epsilon {
			break
		}
		moved = true
		a.state = StateArresting

		along := toCenter.Dot(dir)
		if along <= Epsilon {
			// Nothing left ahead on the heading; close the offset directly.
			if left < gap {
				p = p.Add(toCenter.Mul(left / gap))
				left = 0
			} else {
				p = center
				left -= gap
			}
			continue
		}
		if left < along {
			p = p.Add(dir.Mul(left))
			left = 0
			continue
		}
		p = center
		left -= along
	}

	if !moved {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return p.Sub(pos), dir.Mul(left), true
}

// aheadClear reports whether the agent may leave cell along its heading.
// A diagonal heading also needs both orthogonal neighbors, so it never cuts
// a locked corner.
func (a *Agent) aheadClear(cell grid.Cell) bool {
	step := a.heading.Cell()
	if !a.walk.IsWalkableCell(cell.Add(step)) {
		return false
	}
	if step.X != 0 && step.Y != 0 {
		return a.walk.IsWalkableCell(cell.Add(grid.C(step.X, 0))) &&
			a.walk.IsWalkableCell(cell.Add(grid.C(0, step.Y)))
	}
	return true
}

// centerOf returns the center of cell at the elevation of pos.
// Elevation never takes part in centering.
func (a *Agent) centerOf(cell grid.Cell, pos mgl64.Vec3) mgl64.Vec3 {
	center := a.mapping.Center(cell)
	center[1] = pos[1]
	return center
}

// distance returns the world distance travelled in dt.
func (a *Agent) distance(dt time.Duration) float64 {
	if dt <= 0 {
		return 0
	}
	return a.speed * dt.Seconds() * a.heading.Vector().Len()
}

// strideOf returns half the smaller cell extent of m. Sub-steps of that
// length land at most one cell further, so no cell is skipped.
func strideOf(m grid.Mapping) float64 {
	origin := m.Center(grid.C(0, 0))
	extent := math.Min(
		m.Center(grid.C(1, 0)).Sub(origin).Len(),
		m.Center(grid.C(0, 1)).Sub(origin).Len(),
	)
	if extent/2 <= Epsilon {
		return math.Inf(1)
	}
	return extent / 2
}
