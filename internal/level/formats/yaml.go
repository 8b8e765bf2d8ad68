// Package formats provides level file format parsers.
package formats

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/gridwalk/internal/grid"
)

// ErrInvalidLevel is returned for level files that parse but describe an
// unusable layout.
var ErrInvalidLevel = errors.New("invalid level")

// Layout runes.
const (
	RuneLocked   = '#'
	RuneWalkable = '.'
	RuneSpawn    = 'S'
)

// Defaults applied to omitted fields.
const (
	DefaultCellSize = 1.0
	DefaultSpeed    = 4.0
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	CellSize float64           `yaml:"cell_size,omitempty"`
	Speed    float64           `yaml:"speed,omitempty"`
	Mode     string            `yaml:"mode,omitempty"`
	Heading  string            `yaml:"heading,omitempty"`
	Scatter  float64           `yaml:"scatter,omitempty"`
	Spawn    *YAMLPoint        `yaml:"spawn,omitempty"`
	Layout   []string          `yaml:"layout"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// YAMLPoint is a cell coordinate in YAML format.
type YAMLPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Level represents a parsed level ready for use.
type Level struct {
	ID       string
	Name     string
	Width    int
	Height   int
	CellSize float64
	Speed    float64
	Mode     string
	Heading  grid.Dir
	Moving   bool // Heading was given; the agent starts in motion
	Scatter  float64
	Spawn    grid.Cell
	Locked   []grid.Cell
	Metadata map[string]string
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if yl.ID == "" {
		return Level{}, fmt.Errorf("%w: missing id", ErrInvalidLevel)
	}
	if len(yl.Layout) == 0 {
		return Level{}, fmt.Errorf("%w: %s: empty layout", ErrInvalidLevel, yl.ID)
	}

	level := Level{
		ID:       yl.ID,
		Name:     yl.Name,
		Height:   len(yl.Layout),
		CellSize: yl.CellSize,
		Speed:    yl.Speed,
		Mode:     yl.Mode,
		Scatter:  yl.Scatter,
		Metadata: yl.Metadata,
	}
	if level.Name == "" {
		level.Name = level.ID
	}
	if level.CellSize <= 0 {
		level.CellSize = DefaultCellSize
	}
	if level.Speed <= 0 {
		level.Speed = DefaultSpeed
	}
	if yl.Scatter < 0 || yl.Scatter >= 1 {
		return Level{}, fmt.Errorf("%w: %s: scatter %v outside [0, 1)", ErrInvalidLevel, yl.ID, yl.Scatter)
	}

	if yl.Heading != "" {
		d, ok := grid.ParseDir(yl.Heading)
		if !ok {
			return Level{}, fmt.Errorf("%w: %s: unknown heading %q", ErrInvalidLevel, yl.ID, yl.Heading)
		}
		level.Heading = d
		level.Moving = true
	}

	spawns := 0
	for y, row := range yl.Layout {
		x := 0
		for _, r := range row {
			switch r {
			case RuneLocked:
				level.Locked = append(level.Locked, grid.C(x, y))
			case RuneWalkable:
			case RuneSpawn:
				level.Spawn = grid.C(x, y)
				spawns++
			default:
				return Level{}, fmt.Errorf("%w: %s: unknown rune %q at %d,%d", ErrInvalidLevel, yl.ID, r, x, y)
			}
			x++
		}
		level.Width = max(level.Width, x)
	}

	if yl.Spawn != nil {
		level.Spawn = grid.C(yl.Spawn.X, yl.Spawn.Y)
		spawns++
	}
	if spawns != 1 {
		return Level{}, fmt.Errorf("%w: %s: want exactly one spawn, got %d", ErrInvalidLevel, yl.ID, spawns)
	}

	g := level.ToGrid()
	if !g.IsWalkableCell(level.Spawn) {
		return Level{}, fmt.Errorf("%w: %s: spawn %v is not walkable", ErrInvalidLevel, yl.ID, level.Spawn)
	}

	return level, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}

// ToGrid creates a walkability grid from the level layout.
// Rows shorter than the widest row are padded with walkable cells.
func (l *Level) ToGrid() *grid.Grid {
	g := grid.New(l.Width, l.Height)
	for _, c := range l.Locked {
		//nolint:errcheck // locked cells come from the layout and are in bounds
		g.LockCell(true, c)
	}
	return g
}
