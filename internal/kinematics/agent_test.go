package kinematics

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/gridwalk/internal/grid"
)

const tol = 1e-9

// newWorld returns a grid, a unit-cell mapping and an agent with the given
// cells locked.
func newWorld(t *testing.T, w, h int, locked ...grid.Cell) (*grid.Grid, grid.Uniform, *Agent) {
	t.Helper()
	g := grid.New(w, h)
	for _, c := range locked {
		require.NoError(t, g.LockCell(true, c))
	}
	m, err := grid.NewUniform(1)
	require.NoError(t, err)
	return g, m, New(g, m)
}

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X(), got.X(), tol, "x")
	assert.InDelta(t, want.Y(), got.Y(), tol, "y")
	assert.InDelta(t, want.Z(), got.Z(), tol, "z")
}

func TestStepFreeCorridor(t *testing.T) {
	_, m, a := newWorld(t, 3, 1)
	require.NoError(t, a.SetForward(Vec3i{X: 1}))
	require.NoError(t, a.SetSpeed(1))

	ok, pos := a.Step(time.Second, m.Center(grid.C(0, 0)))

	assert.True(t, ok)
	assertVec(t, m.Center(grid.C(1, 0)), pos)
	assert.Equal(t, StateMoving, a.State())
	assert.Equal(t, AxisX, a.DrivingAxis())
}

func TestStepBlockedClampsToCenter(t *testing.T) {
	_, m, a := newWorld(t, 3, 1, grid.C(1, 0))
	require.NoError(t, a.SetForward(Vec3i{X: 1}))
	require.NoError(t, a.SetSpeed(1))

	start := mgl64.Vec3{0, 0, 0.5} // on the lane, half a cell before the center
	ok, pos := a.Step(time.Second, start)

	assert.True(t, ok)
	assertVec(t, m.Center(grid.C(0, 0)), pos)
	assert.Equal(t, StateArresting, a.State())

	ok, again := a.Step(time.Second, pos)
	assert.False(t, ok)
	assert.Equal(t, pos, again)
	assert.Equal(t, StateSettled, a.State())
}

func TestStepBlockedPartialApproach(t *testing.T) {
	_, _, a := newWorld(t, 3, 1, grid.C(1, 0))
	require.NoError(t, a.SetForward(Vec3i{X: 1}))
	require.NoError(t, a.SetSpeed(0.1))

	ok, pos := a.Step(time.Second, mgl64.Vec3{0.1, 0, 0.5})

	assert.True(t, ok)
	assertVec(t, mgl64.Vec3{0.2, 0, 0.5}, pos)
}

func TestStepAtBlockedCenterIsIdempotent(t *testing.T) {
	_, m, a := newWorld(t, 3, 1, grid.C(1, 0))
	require.NoError(t, a.SetForward(Vec3i{X: 1}))
	require.NoError(t, a.SetSpeed(2))

	pos := m.Center(grid.C(0, 0))
	for i := 0; i < 5; i++ {
		ok, next := a.Step(100*time.Millisecond, pos)
		require.False(t, ok, "iteration %d", i)
		require.Equal(t, pos, next)
	}
}

func TestStepZeroSpeedOrVelocity(t *testing.T) {
	tests := []struct {
		name  string
		setup func(a *Agent)
	}{
		{"zero speed", func(a *Agent) {
			//nolint:errcheck // valid forward
			a.SetForward(Vec3i{X: 1})
		}},
		{"zero velocity", func(a *Agent) {
			//nolint:errcheck // valid speed
			a.SetSpeed(3)
			a.SetVelocity(mgl64.Vec2{0, 0})
		}},
		{"no heading", func(a *Agent) {
			//nolint:errcheck // valid speed
			a.SetSpeed(3)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, m, a := newWorld(t, 3, 3)
			tc.setup(a)
			start := m.Center(grid.C(1, 1)).Add(mgl64.Vec3{0.1, 0, 0})

			ok, pos := a.Step(time.Second, start)
			assert.False(t, ok)
			assert.Equal(t, start, pos)

			ok, pos = a.MoveToCenterStep(time.Second, start)
			assert.False(t, ok)
			assert.Equal(t, start, pos)

			delta, rest, ok := a.TryStep(time.Second, start)
			assert.False(t, ok)
			assert.Zero(t, delta.LenSqr())
			assert.Zero(t, rest.LenSqr())
			assert.Equal(t, StateIdle, a.State())
		})
	}
}

func TestStepNonPositiveDt(t *testing.T) {
	_, m, a := newWorld(t, 3, 1)
	require.NoError(t, a.SetForward(Vec3i{X: 1}))
	require.NoError(t, a.SetSpeed(1))
	start := m.Center(grid.C(0, 0))

	ok, pos := a.Step(-time.Second, start)
	assert.False(t, ok)
	assert.Equal(t, start, pos)
}

func TestStepNeverOvershootsBlockedCenter(t *testing.T) {
	speeds := []float64{0.03, 0.1, 0.33, 0.7, 1, 2.5}
	for _, speed := range speeds {
		_, m, a := newWorld(t, 2, 1, grid.C(1, 0))
		require.NoError(t, a.SetForward(Vec3i{X: 1}))
		require.NoError(t, a.SetSpeed(speed))
		center := m.Center(grid.C(0, 0))

		pos := mgl64.Vec3{0.01, 0, 0.5}
		for i := 0; i < 2000; i++ {
			_, pos = a.Step(16*time.Millisecond, pos)
			require.LessOrEqual(t, pos.X(), center.X()+Epsilon, "speed %v tick %d", speed, i)
		}
		assertVec(t, center, pos)
	}
}

func TestStepIgnoresElevation(t *testing.T) {
	_, m, a := newWorld(t, 2, 1, grid.C(1, 0))
	require.NoError(t, a.SetForward(Vec3i{X: 1}))
	require.NoError(t, a.SetSpeed(1))

	start := mgl64.Vec3{0.2, 3, 0.5}
	ok, pos := a.Step(time.Second, start)
	assert.True(t, ok)
	assertVec(t, mgl64.Vec3{m.Center(grid.C(0, 0)).X(), 3, 0.5}, pos)

	ok, _ = a.Step(time.Second, pos)
	assert.False(t, ok, "agent at a different elevation must still settle")
}

func TestCanMove(t *testing.T) {
	_, m, a := newWorld(t, 3, 1, grid.C(2, 0))
	require.NoError(t, a.SetSpeed(1))

	assert.False(t, a.CanMove(m.Center(grid.C(0, 0))), "no heading")

	require.NoError(t, a.SetForward(Vec3i{X: 1}))
	assert.True(t, a.CanMove(m.Center(grid.C(0, 0))), "walkable ahead")
	assert.False(t, a.CanMove(m.Center(grid.C(1, 0))), "settled against the wall")
	assert.True(t, a.CanMove(mgl64.Vec3{1.2, 0, 0.5}), "room left before the center")

	require.NoError(t, a.SetForward(Vec3i{X: -1}))
	assert.False(t, a.CanMove(m.Center(grid.C(0, 0))), "grid edge counts as blocked")
}

func TestGetNextCell(t *testing.T) {
	_, m, a := newWorld(t, 4, 4)
	pos := m.Center(grid.C(2, 1))

	assert.Equal(t, grid.C(3, 1), a.GetNextCell(grid.C(1, 0), pos))
	assert.Equal(t, grid.C(2, 0), a.GetNextCell(grid.DirUp.Delta(), pos))
	assert.Equal(t, grid.C(2, 1), a.GetNextCell(grid.C(0, 0), pos))
	assert.Equal(t, StateIdle, a.State(), "peeking must not step")
}

func TestSetForwardValidation(t *testing.T) {
	tests := []struct {
		name    string
		forward Vec3i
		wantErr error
	}{
		{"zero", Vec3i{}, ErrInvalidForward},
		{"diagonal", Vec3i{X: 1, Z: 1}, ErrInvalidForward},
		{"not unit", Vec3i{X: 2}, ErrInvalidForward},
		{"vertical", Vec3i{Y: 1}, ErrUnsupportedAxis},
		{"vertical down", Vec3i{Y: -1}, ErrUnsupportedAxis},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, a := newWorld(t, 1, 1)
			require.NoError(t, a.SetForward(Vec3i{Z: -1}))

			err := a.SetForward(tc.forward)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, AxisZ, a.Heading().Axis(), "previous heading must survive")
			assert.Equal(t, -1, a.Heading().Direction())
		})
	}
}

func TestSetForwardDerivesAxis(t *testing.T) {
	tests := []struct {
		forward Vec3i
		axis    Axis
		dir     int
		cell    grid.Cell
	}{
		{Vec3i{X: 1}, AxisX, 1, grid.C(1, 0)},
		{Vec3i{X: -1}, AxisX, -1, grid.C(-1, 0)},
		{Vec3i{Z: 1}, AxisZ, 1, grid.C(0, 1)},
		{Vec3i{Z: -1}, AxisZ, -1, grid.C(0, -1)},
	}

	for _, tc := range tests {
		h, err := AxisLocked(tc.forward)
		require.NoError(t, err)
		assert.Equal(t, ModeAxisLocked, h.Mode())
		assert.Equal(t, tc.axis, h.Axis())
		assert.Equal(t, tc.dir, h.Direction())
		assert.Equal(t, tc.cell, h.Cell())
	}
}

func TestSetVelocityTruncates(t *testing.T) {
	_, _, a := newWorld(t, 1, 1)

	a.SetVelocity(mgl64.Vec2{1.9, -0.7})
	assert.Equal(t, Vec3i{X: 1}, a.Heading().Velocity())
	assert.Equal(t, ModeFree, a.Heading().Mode())

	a.SetVelocity(mgl64.Vec2{-2.2, 3.999})
	assert.Equal(t, Vec3i{X: -2, Z: 3}, a.Heading().Velocity())
	assert.Equal(t, grid.C(-1, 1), a.Heading().Cell())
}

func TestSetSpeedValidation(t *testing.T) {
	_, _, a := newWorld(t, 1, 1)
	require.NoError(t, a.SetSpeed(2))

	require.ErrorIs(t, a.SetSpeed(-1), ErrInvalidSpeed)
	assert.Equal(t, 2.0, a.Speed())
}

func TestHeadingFor(t *testing.T) {
	assert.Equal(t, grid.C(0, -1), HeadingFor(grid.DirUp).Cell())
	assert.Equal(t, AxisZ, HeadingFor(grid.DirDown).Axis())
	assert.Equal(t, AxisX, HeadingFor(grid.DirLeft).Axis())
	assert.Equal(t, "-X", HeadingFor(grid.DirLeft).String())
}

func TestNewPanicsWithoutCapabilities(t *testing.T) {
	m, err := grid.NewUniform(1)
	require.NoError(t, err)
	assert.Panics(t, func() { New(nil, m) })
}

func TestStepCapsAtCenterBeforeBlockedCell(t *testing.T) {
	tests := []struct {
		name  string
		width int
		speed float64
	}{
		{"budget past the center", 3, 1.3},
		{"budget reaching into the locked cell", 4, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, m, a := newWorld(t, tc.width, 1, grid.C(2, 0))
			require.NoError(t, a.SetForward(Vec3i{X: 1}))
			require.NoError(t, a.SetSpeed(tc.speed))
			want := m.Center(grid.C(1, 0))

			ok, pos := a.Step(time.Second, m.Center(grid.C(0, 0)))
			assert.True(t, ok)
			assertVec(t, want, pos)
			assert.Equal(t, StateArresting, a.State())

			ok, again := a.Step(time.Second, pos)
			assert.False(t, ok)
			assert.Equal(t, pos, again)
			assert.Equal(t, StateSettled, a.State())

			pos = m.Center(grid.C(0, 0))
			for i := 0; i < 200; i++ {
				_, pos = a.Step(16*time.Millisecond, pos)
				require.True(t, g.IsWalkableCell(m.ToCell(pos)), "tick %d: %v", i, pos)
				require.LessOrEqual(t, pos.X(), want.X()+Epsilon, "tick %d", i)
			}
			assertVec(t, want, pos)
		})
	}
}

func TestStepBlockedApproachFollowsHeading(t *testing.T) {
	_, m, a := newWorld(t, 3, 3, grid.C(2, 1))
	require.NoError(t, a.SetForward(Vec3i{X: 1}))
	require.NoError(t, a.SetSpeed(0.25))

	// Off the lane: the approach runs along X only and snaps on arrival.
	ok, pos := a.Step(time.Second, mgl64.Vec3{1.1, 0, 1.3})
	assert.True(t, ok)
	assertVec(t, mgl64.Vec3{1.35, 0, 1.3}, pos)
	assert.Equal(t, StateArresting, a.State())

	ok, pos = a.Step(time.Second, pos)
	assert.True(t, ok)
	assertVec(t, m.Center(grid.C(1, 1)), pos)

	ok, _ = a.Step(time.Second, pos)
	assert.False(t, ok)
	assert.Equal(t, StateSettled, a.State())
}
