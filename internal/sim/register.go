package sim

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/gridwalk/internal/level"
	"github.com/vovakirdan/gridwalk/internal/registry"
)

// ErrDuplicateScenario is returned when a level ID is already registered.
var ErrDuplicateScenario = errors.New("sim: scenario already registered")

func init() {
	levels, err := level.Builtin()
	if err != nil {
		panic(fmt.Sprintf("sim: builtin levels: %v", err))
	}
	for _, lvl := range levels {
		if err := RegisterLevel(lvl); err != nil {
			panic(err)
		}
	}
}

// RegisterLevel makes lvl available as a scenario under its ID.
func RegisterLevel(lvl level.Level) error {
	if registry.Exists(lvl.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateScenario, lvl.ID)
	}
	registry.Register(lvl.ID, func() registry.Scenario {
		return NewWalker(lvl)
	})
	return nil
}

// RegisterDir registers every level found under root and returns the IDs
// that were added. Levels whose ID is taken are skipped.
func RegisterDir(root string) ([]string, error) {
	levels, err := level.NewLoader(root).LoadAll()
	if err != nil {
		return nil, err
	}

	var added []string
	for _, lvl := range levels {
		if err := RegisterLevel(lvl); err != nil {
			continue
		}
		added = append(added, lvl.ID)
	}
	return added, nil
}

var _ registry.Scenario = (*Walker)(nil)
