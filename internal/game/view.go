package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/minefall/internal/driver"
	"github.com/vancomm/minefall/internal/mines"
)

// CellState is what the player knows about a cell.
type CellState int8

const (
	Locked       CellState = -3
	Hidden       CellState = -2
	Flagged      CellState = -1
	ExplodedMine CellState = 64
	// 0-8 for an open cell with given number of bombed neighbours
)

func (s CellState) String() string {
	switch {
	case s == Locked:
		return "#"
	case s == Hidden:
		return " "
	case s == Flagged:
		return "*"
	case s == ExplodedMine:
		return "!"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "?"
	}
}

func stateOf(c *mines.Cell) CellState {
	switch {
	case c.IsFlagged():
		return Flagged
	case !c.IsVisible() && c.IsLocked():
		return Locked
	case !c.IsVisible():
		return Hidden
	case c.IsBomb():
		return ExplodedMine
	}
	if n, ok := c.Kind().Number(); ok {
		return CellState(n)
	}
	return Hidden
}

// View is a copy of everything a presentation needs to draw the game.
type View struct {
	Grid    [][]CellState `json:"grid"`
	Rows    int           `json:"rows"`
	Columns int           `json:"columns"`
	Dead    bool          `json:"dead"`
	Cleared int           `json:"cleared"`
	Version uint64        `json:"version"`
	Tick    driver.Tick   `json:"tick"`
}

func (g *Game) View() View {
	m := g.grid.Matrix()
	grid := make([][]CellState, len(m))
	for r, row := range m {
		grid[r] = make([]CellState, len(row))
		for c, cell := range row {
			grid[r][c] = stateOf(cell)
		}
	}
	return View{
		Grid:    grid,
		Rows:    g.grid.Rows(),
		Columns: g.grid.Columns(),
		Dead:    g.Dead,
		Cleared: g.Cleared,
		Version: g.Version,
		Tick:    g.Tick,
	}
}

func (v View) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cleared: %d  next row in: %d", v.Cleared, v.Tick.Value)
	if v.Dead {
		fmt.Fprint(&b, "  GAME OVER")
	}
	fmt.Fprint(&b, "\n")
	for _, row := range v.Grid {
		for _, s := range row {
			fmt.Fprint(&b, s.String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
