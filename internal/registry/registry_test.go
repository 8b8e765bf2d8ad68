package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/gridwalk/internal/core"
)

type stubScenario struct {
	id    string
	state core.ScenarioState
}

func (s *stubScenario) ID() string { return s.id }
func (s *stubScenario) Title() string { return "Stub " + s.id }
func (s *stubScenario) Reset(core.RuntimeConfig) { s.state = core.ScenarioState{} }
func (s *stubScenario) Render(*core.Screen) {}
func (s *stubScenario) State() core.ScenarioState { return s.state }
func (s *stubScenario) Step(core.InputFrame) core.StepResult {
	s.state.Tick++
	return core.StepResult{State: s.state}
}

func TestRegisterCreate(t *testing.T) {
	Register("zz_stub", func() Scenario { return &stubScenario{id: "zz_stub"} })

	if !Exists("zz_stub") {
		t.Fatal("zz_stub not registered")
	}

	sc, err := Create("zz_stub")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sc.ID() != "zz_stub" {
		t.Errorf("ID = %q", sc.ID())
	}

	found := false
	for _, info := range List() {
		if info.ID == "zz_stub" {
			found = true
			if info.Title != "Stub zz_stub" {
				t.Errorf("Title = %q", info.Title)
			}
		}
	}
	if !found {
		t.Error("zz_stub missing from List")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("zz_dup", func() Scenario { return &stubScenario{id: "zz_dup"} })

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("zz_dup", func() Scenario { return &stubScenario{id: "zz_dup"} })
}

func TestCreateUnknown(t *testing.T) {
	_, err := Create("does_not_exist")
	if !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("err = %v, want ErrUnknownScenario", err)
	}
}
