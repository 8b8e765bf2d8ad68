// Package sim runs the tick loop that drives a kinematic agent across a
// level: buffered turns, the three stepping modes and the autopilot.
// It is deterministic for a given seed and input sequence and does no I/O.
package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/gridwalk/internal/core"
	"github.com/vovakirdan/gridwalk/internal/grid"
	"github.com/vovakirdan/gridwalk/internal/kinematics"
	"github.com/vovakirdan/gridwalk/internal/level"
)

// Settings are sandbox-wide overrides applied to every new Walker.
type Settings struct {
	Mode       Mode    // Overrides the level mode when set
	SpeedScale float64 // Multiplies the level speed; 0 means 1
	Autopilot  bool
	MaxTicks   uint64  // 0 means unlimited
	CellSize   float64 // Overrides the level cell size when positive
}

var (
	settingsMu sync.RWMutex
	settings   Settings
)

// Configure sets the overrides used by walkers created afterwards.
func Configure(s Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = s
}

// CurrentSettings returns the active overrides.
func CurrentSettings() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

// Stats accumulates what happened since the last Reset.
type Stats struct {
	Ticks        uint64
	Distance     float64
	BlockedTicks uint64 // Ticks spent arresting or settled against a wall
	Turns        int
}

// Walker is a scenario with one agent on one level.
type Walker struct {
	level    level.Level
	settings Settings
	mode     Mode
	cfg      core.RuntimeConfig

	grid    *grid.Grid
	mapping grid.Uniform
	agent   *kinematics.Agent
	pos     mgl64.Vec3
	dt      time.Duration
	rng     *rand.Rand

	dir        grid.Dir
	hasDir     bool
	pending    grid.Dir
	hasPending bool
	autopilot  bool
	paused     bool

	stats Stats
	state core.ScenarioState

	tileBuf [][]core.ScreenCell
}

// NewWalker creates a scenario for lvl using the current Settings.
func NewWalker(lvl level.Level) *Walker {
	return NewWalkerWith(lvl, CurrentSettings())
}

// NewWalkerWith creates a scenario for lvl with explicit settings.
func NewWalkerWith(lvl level.Level, s Settings) *Walker {
	return &Walker{
		level:    lvl,
		settings: s,
	}
}

// ID returns the level identifier.
func (w *Walker) ID() string {
	return w.level.ID
}

// Title returns the level name.
func (w *Walker) Title() string {
	return w.level.Name
}

// Reset rebuilds the grid from the level and respawns the agent on the
// center of the spawn cell.
func (w *Walker) Reset(cfg core.RuntimeConfig) {
	w.cfg = cfg
	w.rng = rand.New(rand.NewSource(cfg.Seed))

	mode := w.settings.Mode
	if mode == "" {
		parsed, err := ParseMode(w.level.Mode)
		if err != nil {
			parsed = ModeCenter
		}
		mode = parsed
	}
	w.mode = mode

	w.grid = w.level.ToGrid()
	if w.level.Scatter > 0 {
		w.grid.Scatter(w.rng, w.level.Scatter, w.level.Spawn)
	}

	mapping, err := w.level.Mapping()
	if w.settings.CellSize > 0 {
		mapping, err = grid.NewUniform(w.settings.CellSize)
	}
	if err != nil {
		mapping = grid.Uniform{CellSize: 1}
	}
	w.mapping = mapping

	scale := w.settings.SpeedScale
	if scale <= 0 {
		scale = 1
	}
	w.agent = kinematics.New(w.grid, w.mapping, kinematics.WithSpeed(w.level.Speed*scale))
	w.pos = w.mapping.Center(w.level.Spawn)

	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	w.dt = time.Second / time.Duration(tickRate)

	w.hasDir = false
	w.hasPending = false
	if w.level.Moving {
		w.setDir(w.level.Heading)
	}
	w.autopilot = w.settings.Autopilot
	w.paused = false
	w.stats = Stats{}
	w.state = core.ScenarioState{}
}

// Step advances the simulation by one tick.
func (w *Walker) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionRestart) {
		w.Reset(w.cfg)
		return core.StepResult{State: w.state}
	}
	if in.Has(core.ActionPause) {
		w.paused = !w.paused
	}
	if in.Has(core.ActionAutopilot) {
		w.autopilot = !w.autopilot
	}
	if in.Has(core.ActionMode) {
		w.SetMode(w.mode.Next())
	}
	if d, ok := dirForAction(in.Directional()); ok {
		w.Turn(d)
	}

	w.state.Paused = w.paused
	if w.paused || w.state.Finished {
		w.state.Moving = false
		return core.StepResult{State: w.state}
	}

	turns := w.stats.Turns
	var moved float64
	switch w.mode {
	case ModeStep:
		moved = w.stepFree()
	case ModeBudget:
		moved = w.stepBudget()
	default:
		moved = w.stepCenter()
	}

	w.stats.Ticks++
	w.stats.Distance += moved
	switch w.agent.State() {
	case kinematics.StateArresting, kinematics.StateSettled:
		if w.stats.Turns == turns {
			w.stats.BlockedTicks++
		}
	}

	w.state.Tick = w.stats.Ticks
	w.state.Moving = moved > 0
	w.state.Settled = w.agent.State() == kinematics.StateSettled
	if w.settings.MaxTicks > 0 && w.stats.Ticks >= w.settings.MaxTicks {
		w.state.Finished = true
	}
	return core.StepResult{State: w.state}
}

// Turn buffers a direction change. It is committed as soon as the mode
// allows and the neighbor in that direction is walkable.
func (w *Walker) Turn(d grid.Dir) {
	if w.hasDir && d == w.dir {
		w.hasPending = false
		return
	}
	w.pending = d
	w.hasPending = true
}

// SetMode switches the stepping mode, keeping position and direction.
func (w *Walker) SetMode(m Mode) {
	w.mode = m
	if w.hasDir {
		w.setDir(w.dir)
	}
}

// SetAutopilot enables or disables the autopilot.
func (w *Walker) SetAutopilot(on bool) {
	w.autopilot = on
}

// State returns the status after the last tick.
func (w *Walker) State() core.ScenarioState {
	return w.state
}

// Stats returns the counters since the last Reset.
func (w *Walker) Stats() Stats {
	return w.stats
}

// Mode returns the active stepping mode.
func (w *Walker) Mode() Mode {
	return w.mode
}

// Position returns the agent's world position.
func (w *Walker) Position() mgl64.Vec3 {
	return w.pos
}

// Cell returns the cell the agent is in.
func (w *Walker) Cell() grid.Cell {
	return w.mapping.ToCell(w.pos)
}

// Agent exposes the driven agent.
func (w *Walker) Agent() *kinematics.Agent {
	return w.agent
}

// Grid exposes the walkability grid. Locks applied between ticks take effect
// on the next tick.
func (w *Walker) Grid() *grid.Grid {
	return w.grid
}

// stepFree runs Step. Turns commit only on reversal or while the agent is
// at rest, so the free translation stays on lane centers.
func (w *Walker) stepFree() float64 {
	if w.hasPending && (!w.hasDir || w.pending == w.dir.Opposite() || w.atRest()) {
		w.commitPending(w.pos)
	}

	moved, next := w.agent.Step(w.dt, w.pos)
	travelled := next.Sub(w.pos).Len()
	w.pos = next
	if !moved {
		w.restTurn()
	}
	return travelled
}

// stepCenter runs MoveToCenterStep; the agent aligns to the new lane itself.
func (w *Walker) stepCenter() float64 {
	if w.hasPending {
		w.commitPending(w.pos)
	}

	moved, next := w.agent.MoveToCenterStep(w.dt, w.pos)
	travelled := next.Sub(w.pos).Len()
	w.pos = next
	if !moved {
		w.restTurn()
	}
	return travelled
}

// stepBudget spends the tick budget in half-cell segments.
func (w *Walker) stepBudget() float64 {
	t := Traversal{
		Agent:   w.agent,
		Mapping: w.mapping,
		Segment: w.mapping.CellSize / 2,
		Turn:    w.offerTurn,
	}
	res := t.Traverse(w.pos, w.agent.Speed()*w.dt.Seconds())
	w.pos = res.Pos
	return res.Travelled
}

// offerTurn is the traversal callback: a buffered turn wins, then the
// autopilot once the agent is blocked. The traversal applies the heading.
func (w *Walker) offerTurn(center mgl64.Vec3, blocked bool) (kinematics.Heading, bool) {
	if w.hasPending && w.walkable(w.pending, center) {
		w.dir, w.hasDir = w.pending, true
		w.hasPending = false
		w.stats.Turns++
		return w.headingFor(w.dir), true
	}
	if blocked && w.autopilot {
		if d, ok := w.pickDirection(w.mapping.ToCell(center)); ok {
			w.dir, w.hasDir = d, true
			w.stats.Turns++
			return w.headingFor(d), true
		}
	}
	return kinematics.Heading{}, false
}

// restTurn runs after a step that did not move the agent.
func (w *Walker) restTurn() {
	if w.hasPending && w.walkable(w.pending, w.pos) {
		w.commitPending(w.pos)
		return
	}
	if w.autopilot {
		if d, ok := w.pickDirection(w.Cell()); ok {
			w.setDir(d)
			w.stats.Turns++
		}
	}
}

// commitPending applies the buffered turn when its neighbor is walkable.
// A turn into a wall stays buffered.
func (w *Walker) commitPending(pos mgl64.Vec3) {
	if !w.walkable(w.pending, pos) {
		return
	}
	w.setDir(w.pending)
	w.hasPending = false
	w.stats.Turns++
}

func (w *Walker) walkable(d grid.Dir, pos mgl64.Vec3) bool {
	return w.grid.IsWalkableCell(w.agent.GetNextCell(d.Delta(), pos))
}

func (w *Walker) atRest() bool {
	switch w.agent.State() {
	case kinematics.StateSettled, kinematics.StateIdle:
		return true
	default:
		return false
	}
}

// setDir points the agent along d using the heading form of the mode.
func (w *Walker) setDir(d grid.Dir) {
	w.dir = d
	w.hasDir = true
	w.agent.SetHeading(w.headingFor(d))
}

// headingFor returns a free velocity in step mode and an axis-locked
// heading otherwise.
func (w *Walker) headingFor(d grid.Dir) kinematics.Heading {
	if w.mode == ModeStep {
		delta := d.Delta()
		return kinematics.FreeVelocity(kinematics.Vec3i{X: delta.X, Z: delta.Y})
	}
	return kinematics.HeadingFor(d)
}

func dirForAction(a core.Action) (grid.Dir, bool) {
	switch a {
	case core.ActionUp:
		return grid.DirUp, true
	case core.ActionRight:
		return grid.DirRight, true
	case core.ActionDown:
		return grid.DirDown, true
	case core.ActionLeft:
		return grid.DirLeft, true
	default:
		return 0, false
	}
}
