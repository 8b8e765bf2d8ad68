package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridAllWalkable(t *testing.T) {
	g := New(4, 3)

	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 3, g.Height())
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			assert.True(t, g.IsWalkable(x, y), "cell (%d,%d) should start walkable", x, y)
		}
	}
	assert.Zero(t, g.LockedCount())
}

func TestIsWalkableOutOfBounds(t *testing.T) {
	g := New(3, 2)

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 0},
		{"negative y", 0, -1},
		{"x at width", 3, 0},
		{"y at height", 0, 2},
		{"far away", 100, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, g.IsWalkable(tc.x, tc.y))
			assert.False(t, g.IsWalkableCell(C(tc.x, tc.y)))
		})
	}
}

func TestLockUnlock(t *testing.T) {
	g := New(3, 3)

	require.NoError(t, g.Lock(true, 1, 1))
	assert.False(t, g.IsWalkable(1, 1))
	assert.False(t, g.IsWalkableCell(C(1, 1)))
	assert.True(t, g.IsLocked(1, 1))
	assert.Equal(t, 1, g.LockedCount())

	// Locking again is idempotent.
	require.NoError(t, g.Lock(true, 1, 1))
	assert.Equal(t, 1, g.LockedCount())

	require.NoError(t, g.Unlock(1, 1))
	assert.True(t, g.IsWalkable(1, 1))
	assert.Zero(t, g.LockedCount())
}

func TestLockOutOfBoundsIsError(t *testing.T) {
	g := New(2, 2)

	err := g.Lock(true, 2, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)

	err = g.LockCell(true, C(-1, 1))
	require.ErrorIs(t, err, ErrOutOfBounds)

	assert.Zero(t, g.LockedCount())
}

func TestSetSizeResets(t *testing.T) {
	g := New(2, 2)
	require.NoError(t, g.Lock(true, 0, 0))

	require.NoError(t, g.SetSize(5, 1))
	assert.Equal(t, 5, g.Width())
	assert.Equal(t, 1, g.Height())
	assert.Zero(t, g.LockedCount())
	assert.True(t, g.IsWalkable(4, 0))
	assert.False(t, g.IsWalkable(0, 1))

	require.ErrorIs(t, g.SetSize(-1, 3), ErrInvalidSize)
}

func TestNewClampsNegativeSize(t *testing.T) {
	g := New(-3, 2)
	assert.Equal(t, 0, g.Width())
	assert.False(t, g.IsWalkable(0, 0))
}

func TestWalkableNeighbors(t *testing.T) {
	g := New(3, 3)
	require.NoError(t, g.Lock(true, 1, 0))
	require.NoError(t, g.Lock(true, 2, 1))

	dirs := g.WalkableNeighbors(C(1, 1))
	assert.Equal(t, []Dir{DirDown, DirLeft}, dirs)

	corner := g.WalkableNeighbors(C(0, 0))
	assert.Equal(t, []Dir{DirDown}, corner)
}

func TestClone(t *testing.T) {
	g := New(2, 2)
	require.NoError(t, g.Lock(true, 0, 1))

	c := g.Clone()
	require.NoError(t, c.Lock(true, 1, 1))

	assert.Equal(t, 1, g.LockedCount(), "mutating the clone must not touch the original")
	assert.Equal(t, 2, c.LockedCount())
}

func TestScatterDeterministic(t *testing.T) {
	a := New(20, 20)
	b := New(20, 20)
	spawn := C(5, 5)

	na := a.Scatter(rand.New(rand.NewSource(7)), 0.3, spawn)
	nb := b.Scatter(rand.New(rand.NewSource(7)), 0.3, spawn)

	assert.Equal(t, na, nb)
	assert.Equal(t, na, a.LockedCount())
	assert.True(t, a.IsWalkableCell(spawn), "protected cell must stay walkable")
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			assert.Equal(t, a.IsWalkable(x, y), b.IsWalkable(x, y))
		}
	}
}

func TestScatterZeroDensity(t *testing.T) {
	g := New(5, 5)
	assert.Zero(t, g.Scatter(rand.New(rand.NewSource(1)), 0))
	assert.Zero(t, g.LockedCount())
}

func TestSelect(t *testing.T) {
	g := New(3, 2)
	require.NoError(t, g.Lock(true, 2, 1))

	dst := make([][]rune, 3)
	for i := range dst {
		dst[i] = make([]rune, 2)
	}

	h, w := Select(g, func(locked bool) rune {
		if locked {
			return '#'
		}
		return '.'
	}, dst)

	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)
	assert.Equal(t, '#', dst[2][1])
	assert.Equal(t, '.', dst[0][0])
}
