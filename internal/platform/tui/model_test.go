package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridwalk/internal/core"
	"github.com/vovakirdan/gridwalk/internal/registry"
	"github.com/vovakirdan/gridwalk/internal/sim"
)

type memRecorder struct {
	runs []sim.RunSummary
	err  error
}

func (r *memRecorder) RecordRun(s sim.RunSummary) error {
	r.runs = append(r.runs, s)
	return r.err
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, rec sim.RunRecorder) Model {
	t.Helper()
	sc, err := registry.Create("corridor")
	if err != nil {
		t.Fatalf("create corridor: %v", err)
	}
	m := NewModel(sc, rec, core.RuntimeConfig{ScreenW: 60, ScreenH: 20, TickRate: 60, Seed: 7})
	m.Init()
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func TestModelRecordsOnceOnQuit(t *testing.T) {
	rec := &memRecorder{}
	m := newTestModel(t, rec)

	for range 30 {
		m = update(t, m, TickMsg{})
	}
	m = update(t, m, runeKey("q"))
	if !m.IsQuitting() {
		t.Fatal("expected quitting after q")
	}
	m = update(t, m, runeKey("q"))

	if len(rec.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(rec.runs))
	}
	got := rec.runs[0]
	if got.Scenario != "corridor" {
		t.Errorf("scenario = %q, want corridor", got.Scenario)
	}
	if got.Stats.Ticks != 30 {
		t.Errorf("ticks = %d, want 30", got.Stats.Ticks)
	}
	if got.Seed != 7 {
		t.Errorf("seed = %d, want 7", got.Seed)
	}
}

func TestModelSkipsEmptyRuns(t *testing.T) {
	rec := &memRecorder{}
	m := newTestModel(t, rec)

	m = update(t, m, runeKey("b"))
	if !m.BackToMenu() {
		t.Fatal("expected back to menu")
	}
	if len(rec.runs) != 0 {
		t.Errorf("expected no recorded runs, got %d", len(rec.runs))
	}
}

func TestModelRecordsBeforeRestart(t *testing.T) {
	rec := &memRecorder{}
	m := newTestModel(t, rec)

	for range 10 {
		m = update(t, m, TickMsg{})
	}
	m = update(t, m, runeKey("r"))
	m = update(t, m, TickMsg{})
	for range 5 {
		m = update(t, m, TickMsg{})
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if len(rec.runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(rec.runs))
	}
	if rec.runs[0].Stats.Ticks != 10 {
		t.Errorf("first run ticks = %d, want 10", rec.runs[0].Stats.Ticks)
	}
	if rec.runs[1].Stats.Ticks != 6 {
		t.Errorf("second run ticks = %d, want 6", rec.runs[1].Stats.Ticks)
	}
}

func TestModelRecorderError(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	m := newTestModel(t, rec)

	m = update(t, m, TickMsg{})
	m = update(t, m, runeKey("q"))
	if m.Err() == nil || !strings.Contains(m.Err().Error(), "disk full") {
		t.Errorf("expected recorder error, got %v", m.Err())
	}
}

func TestModelViewIncludesHelp(t *testing.T) {
	m := newTestModel(t, nil)
	m = update(t, m, TickMsg{})

	view := m.View()
	if !strings.Contains(view, "autopilot") {
		t.Errorf("view missing key help:\n%s", view)
	}
	if !strings.Contains(view, "Corridor") && !strings.Contains(view, "corridor") {
		t.Errorf("view missing scenario title:\n%s", view)
	}
}

func TestSandboxKeyMap(t *testing.T) {
	keys := DefaultSandboxKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{runeKey("w"), core.ActionUp},
		{tea.KeyMsg{Type: tea.KeyDown}, core.ActionDown},
		{runeKey("a"), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionAutopilot},
		{runeKey("m"), core.ActionMode},
		{runeKey("p"), core.ActionPause},
		{runeKey("r"), core.ActionRestart},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{runeKey("x"), core.ActionNone},
	}
	for _, tt := range tests {
		if got := keys.MapKey(tt.msg); got != tt.want {
			t.Errorf("MapKey(%q) = %v, want %v", tt.msg.String(), got, tt.want)
		}
	}
}

func TestRenderScreenPlainText(t *testing.T) {
	s := core.NewScreen(4, 2)
	s.DrawText(0, 0, "ab")
	s.DrawTextColored(0, 1, "cd", core.ColorRed)

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "ab") || !strings.Contains(lines[1], "cd") {
		t.Errorf("unexpected render %q", out)
	}
}
