package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridwalk/internal/core"
	"github.com/vovakirdan/gridwalk/internal/registry"
	"github.com/vovakirdan/gridwalk/internal/sim"
)

// helpHeight is the number of rows reserved below the scenario for key help.
const helpHeight = 1

// summarizer is implemented by scenarios whose runs can be recorded.
type summarizer interface {
	Summary() sim.RunSummary
}

// Model is the Bubble Tea model for running a sandbox scenario.
type Model struct {
	scenario   registry.Scenario
	screen     *core.Screen
	recorder   sim.RunRecorder
	config     core.RuntimeConfig
	keys       SandboxKeyMap
	help       help.Model
	inputFrame core.InputFrame
	state      core.ScenarioState
	quitting   bool
	backToMenu bool
	quitOnBack bool // Standalone runs have no menu to return to
	recorded   bool // Whether the current run has been recorded
	lastErr    error
}

// NewModel creates a new Bubble Tea model for the given scenario.
// recorder may be nil, in which case runs are not persisted.
func NewModel(sc registry.Scenario, recorder sim.RunRecorder, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return Model{
		scenario:   sc,
		screen:     core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-helpHeight, 0)),
		recorder:   recorder,
		config:     cfg,
		keys:       DefaultSandboxKeyMap(),
		help:       help.New(),
		inputFrame: core.NewInputFrame(),
	}
}

// Init initializes the model and starts the scenario.
func (m Model) Init() tea.Cmd {
	m.scenario.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-helpHeight, 0))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.quitting || m.backToMenu {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	switch action := m.keys.MapKey(msg); action {
	case core.ActionQuit:
		m.record()
		m.quitting = true
		return m, tea.Quit
	case core.ActionBack:
		m.record()
		if m.quitOnBack {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil
	case core.ActionRestart:
		m.record()
		m.inputFrame.Set(action)
	case core.ActionNone:
	default:
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	restart := m.inputFrame.Has(core.ActionRestart)
	if restart {
		m.config.Seed = time.Now().UnixNano()
		m.scenario.Reset(m.config)
		m.inputFrame.Clear()
	}

	result := m.scenario.Step(m.inputFrame)
	m.state = result.State
	if restart {
		m.recorded = false
	}

	if m.state.Finished {
		m.record()
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// record persists the current run once. Runs that never ticked are skipped.
func (m *Model) record() {
	if m.recorded || m.recorder == nil {
		return
	}
	s, ok := m.scenario.(summarizer)
	if !ok {
		return
	}
	summary := s.Summary()
	if summary.Stats.Ticks == 0 {
		return
	}
	m.lastErr = m.recorder.RecordRun(summary)
	m.recorded = true
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.scenario.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		m.lastErr = err
		return
	}
	dir := filepath.Join(home, ".gridwalk", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.lastErr = err
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.scenario.ID(), timestamp)
	m.lastErr = os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.scenario.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + m.help.View(m.keys)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Err returns the last recording or screenshot error, if any.
func (m Model) Err() error {
	return m.lastErr
}

// Run starts the Bubble Tea program for a single scenario.
func Run(sc registry.Scenario, recorder sim.RunRecorder, cfg core.RuntimeConfig) error {
	model := NewModel(sc, recorder, cfg)
	model.quitOnBack = true

	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fmt.Errorf("run finished with error: %w", fm.Err())
	}
	return nil
}
