package sim

import "github.com/vovakirdan/gridwalk/internal/grid"

// pickDirection chooses a random walkable direction out of cell.
// Reversing is only chosen in a dead end.
func (w *Walker) pickDirection(cell grid.Cell) (grid.Dir, bool) {
	options := w.grid.WalkableNeighbors(cell)
	if len(options) == 0 {
		return 0, false
	}

	if w.hasDir && len(options) > 1 {
		forward := options[:0:0]
		for _, d := range options {
			if d != w.dir.Opposite() {
				forward = append(forward, d)
			}
		}
		options = forward
	}

	return options[w.rng.Intn(len(options))], true
}
