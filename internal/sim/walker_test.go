package sim

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/gridwalk/internal/core"
	"github.com/vovakirdan/gridwalk/internal/grid"
	"github.com/vovakirdan/gridwalk/internal/kinematics"
	"github.com/vovakirdan/gridwalk/internal/level"
	"github.com/vovakirdan/gridwalk/internal/level/formats"
	"github.com/vovakirdan/gridwalk/internal/registry"
)

const eps = 1e-6

const corridorLevel = `
id: t_corridor
speed: 3
heading: right
layout:
  - "######"
  - "#S...#"
  - "######"
`

const elbowLevel = `
id: t_elbow
speed: 3
heading: right
layout:
  - "#####"
  - "#S..#"
  - "###.#"
  - "###.#"
  - "#####"
`

func testLevel(t *testing.T, data string) level.Level {
	t.Helper()
	parsed, err := formats.ParseYAML([]byte(data))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	return level.Level{Level: parsed}
}

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 7}
}

func run(w *Walker, ticks int, in core.InputFrame) {
	for range ticks {
		w.Step(in)
	}
}

func near(a, b mgl64.Vec3) bool {
	return math.Abs(a.X()-b.X()) < eps && math.Abs(a.Y()-b.Y()) < eps && math.Abs(a.Z()-b.Z()) < eps
}

func TestCorridorSettlesOnLastCenter(t *testing.T) {
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			w := NewWalkerWith(testLevel(t, corridorLevel), Settings{Mode: mode})
			w.Reset(testConfig())
			run(w, 200, core.NewInputFrame())

			want := mgl64.Vec3{4.5, 0, 1.5}
			if !near(w.Position(), want) {
				t.Errorf("position = %v, want %v", w.Position(), want)
			}
			if w.Cell() != grid.C(4, 1) {
				t.Errorf("cell = %v, want (4,1)", w.Cell())
			}
			if !w.State().Settled {
				t.Errorf("agent state = %v, want settled", w.Agent().State())
			}
			if w.Stats().BlockedTicks == 0 {
				t.Error("expected blocked ticks after reaching the wall")
			}
			if d := w.Stats().Distance; math.Abs(d-3) > 1e-3 {
				t.Errorf("distance = %v, want 3", d)
			}
		})
	}
}

func TestBufferedTurnTakesElbow(t *testing.T) {
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			w := NewWalkerWith(testLevel(t, elbowLevel), Settings{Mode: mode})
			w.Reset(testConfig())

			in := core.NewInputFrame()
			in.Set(core.ActionDown)
			w.Step(in)
			if snap := w.Snapshot(); snap.Pending != "Down" {
				t.Fatalf("pending = %q, want Down buffered until the elbow", snap.Pending)
			}

			run(w, 300, core.NewInputFrame())

			want := mgl64.Vec3{3.5, 0, 3.5}
			if !near(w.Position(), want) {
				t.Errorf("position = %v, want %v", w.Position(), want)
			}
			if w.Stats().Turns != 1 {
				t.Errorf("turns = %d, want 1", w.Stats().Turns)
			}
			if w.Snapshot().Pending != "" {
				t.Error("turn should be consumed")
			}
		})
	}
}

func TestTurnIntoWallStaysBuffered(t *testing.T) {
	w := NewWalkerWith(testLevel(t, corridorLevel), Settings{Mode: ModeCenter})
	w.Reset(testConfig())

	in := core.NewInputFrame()
	in.Set(core.ActionUp)
	run(w, 200, in)

	if w.Cell().Y != 1 {
		t.Errorf("agent left its row: %v", w.Cell())
	}
	if w.Stats().Turns != 0 {
		t.Errorf("turns = %d, want 0", w.Stats().Turns)
	}
}

func TestReversalInStepMode(t *testing.T) {
	w := NewWalkerWith(testLevel(t, corridorLevel), Settings{Mode: ModeStep})
	w.Reset(testConfig())
	run(w, 30, core.NewInputFrame())
	mid := w.Position().X()

	in := core.NewInputFrame()
	in.Set(core.ActionLeft)
	w.Step(in)
	run(w, 5, core.NewInputFrame())

	if w.Position().X() >= mid {
		t.Errorf("x = %v, want less than %v after reversal", w.Position().X(), mid)
	}
	if w.Agent().Heading().String() != "v(-1,0,0)" {
		t.Errorf("heading = %v", w.Agent().Heading())
	}
}

func TestAgentStaysOnWalkableCells(t *testing.T) {
	for _, info := range registry.List() {
		for _, mode := range Modes() {
			t.Run(info.ID+"/"+string(mode), func(t *testing.T) {
				sc, err := registry.Create(info.ID)
				if err != nil {
					t.Fatal(err)
				}
				w, ok := sc.(*Walker)
				if !ok {
					t.Skip("not a walker")
				}
				w.settings = Settings{Mode: mode, Autopilot: true}
				w.Reset(testConfig())

				for tick := range 900 {
					w.Step(core.NewInputFrame())
					if !w.Grid().IsWalkableCell(w.Cell()) {
						t.Fatalf("tick %d: agent in locked cell %v", tick, w.Cell())
					}
				}
			})
		}
	}
}

func TestDeterminism(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 12345

	w1, err := registry.Create("plaza")
	if err != nil {
		t.Fatal(err)
	}
	w2, _ := registry.Create("plaza")
	for _, sc := range []registry.Scenario{w1, w2} {
		sc.(*Walker).settings = Settings{Autopilot: true}
		sc.Reset(cfg)
	}

	for i := 0; i < 500; i++ {
		in := core.NewInputFrame()
		if i == 100 {
			in.Set(core.ActionUp)
		}
		if i == 250 {
			in.Set(core.ActionMode)
		}
		w1.Step(in)
		w2.Step(in)
	}

	s1 := w1.(*Walker).Snapshot()
	s2 := w2.(*Walker).Snapshot()
	if s1 != s2 {
		t.Errorf("snapshots differ:\n%+v\n%+v", s1, s2)
	}
}

func TestPauseAndRestart(t *testing.T) {
	w := NewWalkerWith(testLevel(t, corridorLevel), Settings{})
	w.Reset(testConfig())
	run(w, 10, core.NewInputFrame())

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	w.Step(pause)
	frozen := w.Position()
	run(w, 10, core.NewInputFrame())

	if !w.State().Paused {
		t.Error("expected paused state")
	}
	if w.Position() != frozen {
		t.Errorf("moved while paused: %v -> %v", frozen, w.Position())
	}

	restart := core.NewInputFrame()
	restart.Set(core.ActionRestart)
	w.Step(restart)
	if w.State().Paused || w.Stats().Ticks != 0 {
		t.Errorf("restart did not reset: %+v", w.State())
	}
	if !near(w.Position(), mgl64.Vec3{1.5, 0, 1.5}) {
		t.Errorf("position after restart = %v", w.Position())
	}
}

func TestMaxTicksFinishes(t *testing.T) {
	w := NewWalkerWith(testLevel(t, corridorLevel), Settings{MaxTicks: 5})
	w.Reset(testConfig())
	run(w, 10, core.NewInputFrame())

	if !w.State().Finished {
		t.Error("expected finished state")
	}
	if w.Stats().Ticks != 5 {
		t.Errorf("ticks = %d, want 5", w.Stats().Ticks)
	}
}

func TestModeCycleKeepsPosition(t *testing.T) {
	w := NewWalkerWith(testLevel(t, corridorLevel), Settings{Mode: ModeStep})
	w.Reset(testConfig())
	run(w, 10, core.NewInputFrame())
	before := w.Position()

	in := core.NewInputFrame()
	in.Set(core.ActionMode)
	w.Step(in)

	if w.Mode() != ModeCenter {
		t.Errorf("mode = %s, want center", w.Mode())
	}
	if w.Agent().Heading().Mode() != kinematics.ModeAxisLocked {
		t.Errorf("heading mode = %v, want axis locked", w.Agent().Heading().Mode())
	}
	if w.Position().X() <= before.X() {
		t.Error("agent should keep moving after a mode switch")
	}
}

func TestSpeedScale(t *testing.T) {
	w := NewWalkerWith(testLevel(t, corridorLevel), Settings{SpeedScale: 0.5})
	w.Reset(testConfig())
	if got := w.Agent().Speed(); got != 1.5 {
		t.Errorf("speed = %v, want 1.5", got)
	}
}

func TestRender(t *testing.T) {
	w := NewWalkerWith(testLevel(t, corridorLevel), Settings{})
	w.Reset(testConfig())

	screen := core.NewScreen(40, 10)
	w.Render(screen)

	offX := (40 - 6) / 2
	if got := screen.GetCell(offX+1, hudHeight+1); got.Rune != '>' || got.Color != core.ColorBrightYellow {
		t.Errorf("agent cell = %+v", got)
	}
	if got := screen.Get(offX, hudHeight); got != '█' {
		t.Errorf("wall cell = %q", got)
	}

	tiny := core.NewScreen(4, 3)
	w.Render(tiny)
	if tiny.String() == "    \n    \n    " {
		t.Error("expected too-small notice")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeCenter, false},
		{"step", ModeStep, false},
		{"budget", ModeBudget, false},
		{"warp", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if ModeBudget.Next() != ModeStep {
		t.Errorf("cycle does not wrap")
	}
}
