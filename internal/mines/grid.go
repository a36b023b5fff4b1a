package mines

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// RowPolicy decides what replaces the rows removed by [Grid.RemoveClearedRows].
type RowPolicy uint8

const (
	// RowsSeeded inserts hidden, playable rows at the top. Each new cell is
	// a bomb with the grid's bomb chance.
	RowsSeeded RowPolicy = iota
	// RowsLocked is RowsSeeded with locked rows that have to drop in.
	RowsLocked
	// RowsGap inserts visible empty rows below the locked rows so that
	// locked rows can fall into them.
	RowsGap
)

func (p RowPolicy) String() string {
	switch p {
	case RowsSeeded:
		return "seeded"
	case RowsLocked:
		return "locked"
	case RowsGap:
		return "gap"
	default:
		return fmt.Sprintf("RowPolicy(%d)", uint8(p))
	}
}

func ParseRowPolicy(s string) (RowPolicy, error) {
	switch strings.ToLower(s) {
	case "", "seeded":
		return RowsSeeded, nil
	case "locked":
		return RowsLocked, nil
	case "gap":
		return RowsGap, nil
	default:
		return 0, fmt.Errorf("row policy must be one of 'seeded', 'locked', 'gap'")
	}
}

type Params struct {
	Rows, Columns, NumBombs int
	// Rows above MinBombRow never get bombs at build time; rows above
	// MinBombRow-1 start locked.
	MinBombRow int
	// RevealOrigin opens the flood region of (0, 0) right after the build.
	RevealOrigin bool
	RowPolicy    RowPolicy
}

func (p Params) Validate() error {
	if err := checkAtLeast("rows", p.Rows, 0); err != nil {
		return err
	}
	if err := checkAtLeast("columns", p.Columns, 0); err != nil {
		return err
	}
	if err := checkAtLeast("min bomb row", p.MinBombRow, 0); err != nil {
		return err
	}
	if p.Rows > 0 {
		if err := checkBelow("min bomb row", p.MinBombRow, p.Rows); err != nil {
			return err
		}
	} else if err := checkAtMost("min bomb row", p.MinBombRow, 0); err != nil {
		return err
	}
	if err := checkAtLeast("bombs", p.NumBombs, 0); err != nil {
		return err
	}
	return checkAtMost("bombs", p.NumBombs, (p.Rows-p.MinBombRow)*p.Columns)
}

type Grid struct {
	cells      [][]*Cell
	rows       int
	columns    int
	bombChance float64
	policy     RowPolicy
	rnd        *rand.Rand
}

func Build(params Params, r *rand.Rand) (*Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rows, columns := params.Rows, params.Columns
	g := &Grid{
		rows:    rows,
		columns: columns,
		policy:  params.RowPolicy,
		rnd:     r,
	}
	if total := rows * columns; total > 0 {
		g.bombChance = float64(params.NumBombs) / float64(total)
	}

	g.cells = make([][]*Cell, rows)
	for row := range rows {
		locked := row < params.MinBombRow-1
		g.cells[row] = make([]*Cell, columns)
		for column := range columns {
			g.cells[row][column] = NewUnknownCell(
				Coordinate{row, column}, CellOptions{Locked: locked},
			)
		}
	}

	for _, coord := range pickBombCoordinates(params, r) {
		g.cells[coord.Row][coord.Column].setBomb()
	}

	g.computeValues()

	if params.RevealOrigin && rows > 0 && columns > 0 {
		if origin := g.cells[0][0]; !origin.IsBomb() && !origin.locked {
			g.Reveal(origin, RevealOptions{})
		}
	}

	Log.WithFields(logrus.Fields{
		"rows":       rows,
		"columns":    columns,
		"bombs":      params.NumBombs,
		"minBombRow": params.MinBombRow,
		"policy":     params.RowPolicy,
	}).Debug("built grid")

	return g, nil
}

func pickBombCoordinates(params Params, r *rand.Rand) []Coordinate {
	candidates := make([]Coordinate, 0, (params.Rows-params.MinBombRow)*params.Columns)
	for row := params.MinBombRow; row < params.Rows; row++ {
		for column := range params.Columns {
			candidates = append(candidates, Coordinate{row, column})
		}
	}

	/*
	 * Partial Fisher-Yates: the first n slots end up holding a uniformly
	 * chosen n-subset.
	 */
	for i := range params.NumBombs {
		j := i + r.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:params.NumBombs]
}

func (g *Grid) Rows() int           { return g.rows }
func (g *Grid) Columns() int        { return g.columns }
func (g *Grid) BombChance() float64 { return g.bombChance }
func (g *Grid) RowPolicy() RowPolicy {
	return g.policy
}

// Matrix returns a copy of the row references. Cells are shared with the
// grid, rows are not.
func (g *Grid) Matrix() [][]*Cell {
	m := make([][]*Cell, len(g.cells))
	for i, row := range g.cells {
		m[i] = append([]*Cell(nil), row...)
	}
	return m
}

func (g *Grid) Bombs() []*Cell {
	var bombs []*Cell
	for _, row := range g.cells {
		for _, c := range row {
			if c.IsBomb() {
				bombs = append(bombs, c)
			}
		}
	}
	return bombs
}

func (g *Grid) Cell(coord Coordinate) (*Cell, error) {
	if err := checkIndex("row", coord.Row, g.rows); err != nil {
		return nil, err
	}
	if err := checkIndex("column", coord.Column, g.columns); err != nil {
		return nil, err
	}
	return g.cells[coord.Row][coord.Column], nil
}

// Border returns the in-bounds Moore neighbours of c, row by row.
func (g *Grid) Border(c *Cell) []*Cell {
	row, column := c.coord.Row, c.coord.Column
	border := make([]*Cell, 0, 8)
	for r := row - 1; r <= row+1; r++ {
		if r < 0 || r >= g.rows {
			continue
		}
		for cc := column - 1; cc <= column+1; cc++ {
			if cc < 0 || cc >= g.columns {
				continue
			}
			if r == row && cc == column {
				continue
			}
			border = append(border, g.cells[r][cc])
		}
	}
	return border
}

type RevealOptions struct {
	// RevealFlagged lets the origin of the reveal open a flagged cell. The
	// flood that follows never does.
	RevealFlagged bool
}

// Reveal opens c and, when c has no bombed neighbours, floods into its
// border. Locked neighbours are never flooded into.
func (g *Grid) Reveal(c *Cell, opts RevealOptions) {
	if c.visible {
		return
	}
	if c.flagged && !opts.RevealFlagged {
		return
	}

	c.Reveal()

	/*
	 * Every cell goes on the to-do list as it is opened; opening a zero
	 * queues its hidden neighbours in turn.
	 */
	todo := newCelltodo(g.rows * g.columns)
	todo.add(g.index(c))
	for i, ok := todo.pop(); ok; i, ok = todo.pop() {
		cell := g.cells[i/g.columns][i%g.columns]
		if cell.value != 0 {
			continue
		}
		for _, n := range g.Border(cell) {
			if n.locked || n.visible || n.flagged {
				continue
			}
			n.Reveal()
			todo.add(g.index(n))
		}
	}
}

func (g *Grid) index(c *Cell) int {
	return c.coord.Row*g.columns + c.coord.Column
}

// RevealBombs is the end of game reveal: every bomb is shown, flagged or not.
func (g *Grid) RevealBombs() {
	for _, c := range g.Bombs() {
		g.Reveal(c, RevealOptions{RevealFlagged: true})
	}
}

// computeValues recounts every safe cell. Bombs in locked cells are not
// counted.
func (g *Grid) computeValues() {
	for _, row := range g.cells {
		for _, c := range row {
			if c.IsBomb() {
				continue
			}
			c.setNumber(g.countBombs(c))
		}
	}
}

func (g *Grid) countBombs(c *Cell) int {
	n := 0
	for _, b := range g.Border(c) {
		if b.IsBomb() && !b.locked {
			n++
		}
	}
	return n
}

// Grid implements [fmt.Stringer]
func (g *Grid) String() string {
	var b strings.Builder
	for _, row := range g.cells {
		for _, c := range row {
			s := c.String()
			if c.locked && !c.visible {
				s = "#"
			}
			fmt.Fprint(&b, s+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
