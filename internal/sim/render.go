package sim

import (
	"fmt"

	"github.com/vovakirdan/gridwalk/internal/core"
	"github.com/vovakirdan/gridwalk/internal/grid"
)

const hudHeight = 2

// Render draws the HUD, the grid and the agent.
// Each cell is one character; the agent is drawn in the cell it occupies.
func (w *Walker) Render(dst *core.Screen) {
	gw, gh := w.grid.Width(), w.grid.Height()
	if dst.Width() < gw || dst.Height() < gh+hudHeight+1 {
		dst.DrawTextCentered(dst.Height()/2, "Window too small")
		return
	}

	w.renderHUD(dst)

	offX := (dst.Width() - gw) / 2
	offY := hudHeight
	for x, col := range w.tiles() {
		for y, tile := range col {
			dst.SetColored(offX+x, offY+y, tile.Rune, tile.Color)
		}
	}

	if w.hasPending {
		target := w.Cell().Step(w.pending)
		if w.grid.IsWalkableCell(target) {
			dst.SetColored(offX+target.X, offY+target.Y, '+', core.ColorCyan)
		}
	}

	cell := w.Cell()
	color := core.ColorBrightYellow
	if w.state.Settled {
		color = core.ColorRed
	}
	dst.SetColored(offX+cell.X, offY+cell.Y, w.glyph(), color)

	w.renderFooter(dst, offY+gh)
}

// tiles projects the grid into screen cells, reusing the buffer while the
// grid size is unchanged.
func (w *Walker) tiles() [][]core.ScreenCell {
	gw, gh := w.grid.Width(), w.grid.Height()
	if len(w.tileBuf) != gw || (gw > 0 && len(w.tileBuf[0]) != gh) {
		w.tileBuf = make([][]core.ScreenCell, gw)
		for x := range w.tileBuf {
			w.tileBuf[x] = make([]core.ScreenCell, gh)
		}
	}
	grid.Select(w.grid, tileFor, w.tileBuf)
	return w.tileBuf
}

func tileFor(locked bool) core.ScreenCell {
	if locked {
		return core.ScreenCell{Rune: '█', Color: core.ColorGray}
	}
	return core.ScreenCell{Rune: '·', Color: core.ColorBlue}
}

func (w *Walker) renderHUD(dst *core.Screen) {
	dst.DrawTextColored(1, 0, w.Title(), core.ColorBrightWhite)
	status := fmt.Sprintf("mode:%s  heading:%s  %s", w.mode, w.agent.Heading(), w.agent.State())
	dst.DrawTextColored(dst.Width()-len(status)-1, 0, status, core.ColorGreen)

	pos := fmt.Sprintf("pos:(%.2f, %.2f)  cell:%v  dist:%.1f  turns:%d",
		w.pos.X(), w.pos.Z(), w.Cell(), w.stats.Distance, w.stats.Turns)
	dst.DrawText(1, 1, pos)
}

func (w *Walker) renderFooter(dst *core.Screen, y int) {
	switch {
	case w.paused:
		dst.DrawTextColored(1, y, "PAUSED", core.ColorYellow)
	case w.state.Finished:
		dst.DrawTextColored(1, y, "FINISHED - press R to restart", core.ColorYellow)
	case w.autopilot:
		dst.DrawTextColored(1, y, "AUTOPILOT", core.ColorCyan)
	}
}

// glyph returns an arrow for the current direction.
func (w *Walker) glyph() rune {
	if !w.hasDir || w.agent.Heading().IsZero() {
		return '@'
	}
	switch w.dir {
	case grid.DirUp:
		return '^'
	case grid.DirRight:
		return '>'
	case grid.DirDown:
		return 'v'
	default:
		return '<'
	}
}
