package kinematics

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/gridwalk/internal/grid"
)

// MoveToCenterStep advances pos while keeping the agent on lane centers.
//
// For a heading along a single axis it runs a small state machine:
//   - blocked ahead: close in on the cell center along the axis, then stop;
//   - walkable ahead but off the lane center of the orthogonal axis: close
//     that gap first, and once it is closed within this tick spend the rest
//     of the budget along the heading;
//   - otherwise translate along the axis.
//
// Diagonal free velocities are handled per planar axis, so an agent pressed
// against a wall slides along it into the lane center.
func (a *Agent) MoveToCenterStep(dt time.Duration, pos mgl64.Vec3) (bool, mgl64.Vec3) {
	if dt <= 0 || a.speed == 0 || a.heading.IsZero() {
		a.state = StateIdle
		return false, pos
	}

	axis, dir, scale, ok := a.heading.planarAxis()
	if !ok {
		return a.perAxisStep(dt, pos)
	}
	budget := a.speed * dt.Seconds() * scale

	cell := a.mapping.ToCell(pos)
	center := a.centerOf(cell, pos)
	if a.walk.IsWalkableCell(cell.Add(a.heading.Cell())) {
		if next, handled := a.changeDirectionMoveToCenter(axis, dir, budget, center, pos); handled {
			return true, next
		}
		delta, _, moved := a.TryStepBudget(budget, pos)
		return moved, pos.Add(delta)
	}

	return a.notWalkableMoveToCenter(axis, budget, center, pos)
}

// changeDirectionMoveToCenter closes the gap to the lane center on the axis
// orthogonal to the heading. When the gap is smaller than the budget the
// agent snaps onto the lane and the leftover moves it along the heading.
// Returns false when the agent is already on the lane.
func (a *Agent) changeDirectionMoveToCenter(axis Axis, dir int, budget float64, center, pos mgl64.Vec3) (mgl64.Vec3, bool) {
	i := axis.orthogonal().index()

	delta := center[i] - pos[i]
	gap := math.Abs(delta)
	if gap <= Epsilon {
		return pos, false
	}

	a.state = StateAligning
	if gap < budget {
		pos[i] = center[i]
		step, _, _ := a.TryStepBudget(budget-gap, pos)
		pos = pos.Add(step)
		a.state = StateAligning
		a.driving = axis
	} else {
		pos[i] += budget * sign(delta)
	}
	return pos, true
}

// notWalkableMoveToCenter closes in on the cell center along the heading
// axis. Returns false once the agent is on the center.
func (a *Agent) notWalkableMoveToCenter(axis Axis, budget float64, center, pos mgl64.Vec3) (bool, mgl64.Vec3) {
	if axis != AxisX && axis != AxisZ {
		panic(fmt.Sprintf("kinematics: blocked fallback reached with axis %v", axis))
	}
	i := axis.index()

	delta := center[i] - pos[i]
	gap := math.Abs(delta)
	if gap <= Epsilon {
		a.state = StateSettled
		return false, pos
	}

	a.state = StateArresting
	if gap < budget {
		pos[i] = center[i]
	} else {
		pos[i] += budget * sign(delta)
	}
	return true, pos
}

// perAxisStep moves a diagonal free velocity one planar axis at a time.
// Each axis checks its own neighbor and either translates or clamps toward
// the cell center independently. When both axes are open the diagonal cell
// must be open too, otherwise both clamp. The tick is split into sub-steps
// short enough that every cell entered is checked.
func (a *Agent) perAxisStep(dt time.Duration, pos mgl64.Vec3) (bool, mgl64.Vec3) {
	v := a.heading.Velocity()
	left := a.speed * dt.Seconds()
	slice := a.stride / float64(max(absInt(v.X), absInt(v.Z)))

	translated, clamped := false, false
	for left > 0 {
		s := min(left, slice)
		left -= s

		var t, c bool
		pos, t, c = a.perAxisSlice(v, s, pos)
		translated = translated || t
		clamped = clamped || c
		if !t && !c {
			break
		}
	}

	switch {
	case translated:
		a.state = StateMoving
	case clamped:
		a.state = StateArresting
	default:
		a.state = StateSettled
	}
	return translated || clamped, pos
}

func (a *Agent) perAxisSlice(v Vec3i, s float64, pos mgl64.Vec3) (mgl64.Vec3, bool, bool) {
	cell := a.mapping.ToCell(pos)
	center := a.centerOf(cell, pos)

	openX := v.X != 0 && a.walk.IsWalkableCell(cell.Add(grid.C(signInt(v.X), 0)))
	openZ := v.Z != 0 && a.walk.IsWalkableCell(cell.Add(grid.C(0, signInt(v.Z))))
	if openX && openZ && !a.walk.IsWalkableCell(cell.Add(a.heading.Cell())) {
		openX, openZ = false, false
	}

	translated, clamped := false, false
	for _, comp := range [...]struct {
		axis      Axis
		component int
		open      bool
	}{
		{AxisX, v.X, openX},
		{AxisZ, v.Z, openZ},
	} {
		if comp.component == 0 {
			continue
		}
		i := comp.axis.index()
		budget := s * float64(absInt(comp.component))

		if comp.open {
			pos[i] += float64(signInt(comp.component)) * budget
			translated = true
			continue
		}

		delta := center[i] - pos[i]
		gap := math.Abs(delta)
		if gap <= Epsilon {
			continue
		}
		if gap < budget {
			pos[i] = center[i]
		} else {
			pos[i] += budget * sign(delta)
		}
		clamped = true
	}
	return pos, translated, clamped
}

// sign returns the sign of a non-zero delta as -1 or +1, and 0 for zero.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
