package sim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/gridwalk/internal/grid"
	"github.com/vovakirdan/gridwalk/internal/kinematics"
)

// maxSegments bounds one traversal so a turn callback that keeps offering
// blocked headings cannot spin forever.
const maxSegments = 64

// TurnFunc is asked for a new heading whenever a traversal reaches a cell
// center. blocked is true when the agent rests against a locked cell.
// Returning false keeps the current heading.
type TurnFunc func(center mgl64.Vec3, blocked bool) (kinematics.Heading, bool)

// Traversal spends a distance budget along an agent's heading in segments of
// at most Segment world units, so no cell center is skipped.
type Traversal struct {
	Agent   *kinematics.Agent
	Mapping grid.Mapping
	Segment float64
	Turn    TurnFunc
}

// TraverseResult reports what a traversal did.
type TraverseResult struct {
	Pos       mgl64.Vec3
	Travelled float64
	Segments  int
	Turns     int
	Blocked   bool // Budget left over with nowhere to go
}

// Traverse moves pos by up to distance. At every cell center it passes it
// offers a turn; an accepted turn is applied on the center and the rest of
// the budget continues along the new heading. Leftover motion from a blocked
// segment is re-issued after a turn in the same call.
func (t Traversal) Traverse(pos mgl64.Vec3, distance float64) TraverseResult {
	res := TraverseResult{Pos: pos}
	left := distance
	segment := t.Segment
	if segment <= 0 {
		segment = distance
	}

	for left > kinematics.Epsilon && res.Segments < maxSegments {
		res.Segments++
		seg := min(left, segment)

		if t.Turn != nil {
			if center, along, ok := t.centerAhead(res.Pos, seg); ok {
				if h, turn := t.Turn(center, false); turn && h != t.Agent.Heading() {
					res.Pos = center
					res.Travelled += along
					left -= along
					t.Agent.SetHeading(h)
					res.Turns++
					continue
				}
			}
		}

		delta, remaining, ok := t.Agent.TryStepBudget(seg, res.Pos)
		if !ok {
			if t.Turn != nil {
				if h, turn := t.Turn(res.Pos, true); turn && h != t.Agent.Heading() {
					t.Agent.SetHeading(h)
					res.Turns++
					continue
				}
			}
			res.Blocked = true
			break
		}

		res.Pos = res.Pos.Add(delta)
		res.Travelled += delta.Len()
		// The segment is spent except for what the agent hands back.
		left -= seg - remaining.Len()
	}

	return res
}

// centerAhead returns the current cell center and the distance to it when it
// lies on the heading within seg. An agent already on the center reports zero.
func (t Traversal) centerAhead(pos mgl64.Vec3, seg float64) (mgl64.Vec3, float64, bool) {
	h := t.Agent.Heading()
	if h.IsZero() {
		return pos, 0, false
	}
	center := t.Mapping.Center(t.Mapping.ToCell(pos))
	center[1] = pos[1]

	toCenter := center.Sub(pos)
	if toCenter.Len() <= kinematics.Epsilon {
		return center, 0, true
	}
	along := toCenter.Dot(h.Vector().Normalize())
	if along > kinematics.Epsilon && along <= seg {
		return center, along, true
	}
	return pos, 0, false
}
