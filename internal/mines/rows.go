package mines

import (
	"slices"

	"github.com/sirupsen/logrus"
)

func rowLocked(row []*Cell) bool {
	return len(row) > 0 && !slices.ContainsFunc(row, func(c *Cell) bool { return !c.locked })
}

func rowVisible(row []*Cell) bool {
	return len(row) > 0 && !slices.ContainsFunc(row, func(c *Cell) bool { return !c.visible })
}

// rowClear: every cell is either open or a correctly flagged bomb. Locked
// rows are never clear.
func rowClear(row []*Cell) bool {
	if len(row) == 0 {
		return false
	}
	for _, c := range row {
		if c.locked {
			return false
		}
		if !c.visible && !(c.flagged && c.IsBomb()) {
			return false
		}
	}
	return true
}

// rowFiller: every cell was opened by the grid, see [Grid.gapRow].
func rowFiller(row []*Cell) bool {
	return len(row) > 0 && !slices.ContainsFunc(row, func(c *Cell) bool { return !c.filler })
}

// rowGap: an open, unlocked row that is either filler or has no bombed
// neighbour.
func rowGap(row []*Cell) bool {
	if !rowVisible(row) {
		return false
	}
	if rowFiller(row) {
		return true
	}
	for _, c := range row {
		if c.locked || c.value != 0 {
			return false
		}
	}
	return true
}

func (g *Grid) seededRow(locked bool) []*Cell {
	row := make([]*Cell, g.columns)
	for column := range row {
		opts := CellOptions{Locked: locked}
		if g.rnd.Float64() < g.bombChance {
			row[column] = NewBombCell(Coordinate{Column: column}, opts)
		} else {
			row[column] = NewUnknownCell(Coordinate{Column: column}, opts)
		}
	}
	return row
}

func (g *Grid) gapRow() []*Cell {
	row := make([]*Cell, g.columns)
	for column := range row {
		row[column] = NewZeroCell(Coordinate{Column: column}, CellOptions{Visible: true})
		row[column].filler = true
	}
	return row
}

// renumber makes every cell's coordinate match its position again.
func (g *Grid) renumber() {
	for r, row := range g.cells {
		for c, cell := range row {
			cell.coord = Coordinate{r, c}
		}
	}
}

// RemoveClearedRows deletes every clear row and replaces it according to the
// grid's [RowPolicy]. It returns the number of rows removed. Filler rows are
// never counted, whatever numbers they show.
func (g *Grid) RemoveClearedRows() int {
	var cleared []int
	for r, row := range g.cells {
		if rowClear(row) && !rowFiller(row) {
			cleared = append(cleared, r)
		}
	}

	if g.policy == RowsGap {
		/* Leading gap rows are where locked rows fall into; keep them. */
		for len(cleared) > 0 && rowGap(g.cells[cleared[0]]) {
			cleared = cleared[1:]
		}
	}

	if len(cleared) == 0 {
		return 0
	}

	kept := make([][]*Cell, 0, g.rows)
	for r, row := range g.cells {
		if _, found := slices.BinarySearch(cleared, r); !found {
			kept = append(kept, row)
		}
	}

	fresh := make([][]*Cell, len(cleared))
	for i := range fresh {
		switch g.policy {
		case RowsGap:
			fresh[i] = g.gapRow()
		case RowsLocked:
			fresh[i] = g.seededRow(true)
		default:
			fresh[i] = g.seededRow(false)
		}
	}

	at := 0
	if g.policy == RowsGap {
		for at < len(kept) && (rowLocked(kept[at]) || rowGap(kept[at])) {
			at++
		}
	}
	g.cells = slices.Insert(kept, at, fresh...)

	g.renumber()
	g.computeValues()

	Log.WithFields(logrus.Fields{
		"cleared": cleared,
		"policy":  g.policy,
	}).Debug("removed cleared rows")

	return len(cleared)
}

// TryAddNewRow recycles the first fully open row into a new locked row at
// the top. It returns false when no row is fully open, i.e. the grid is full.
func (g *Grid) TryAddNewRow() bool {
	idx := slices.IndexFunc(g.cells, rowVisible)
	if idx < 0 {
		return false
	}

	g.cells = slices.Delete(g.cells, idx, idx+1)
	g.cells = slices.Insert(g.cells, 0, g.seededRow(true))

	g.renumber()
	g.computeValues()

	Log.WithField("recycled", idx).Debug("added new row")
	return true
}

// TryDropLockedRow moves the locked row at index row one position down when
// the row below it is fully open. The open row is consumed and an empty open
// row takes the dropped row's place. The dropped row unlocks once it reaches
// the bottom or lands on a row that still has work in it.
func (g *Grid) TryDropLockedRow(row int) (bool, error) {
	if err := checkIndex("row", row, g.rows); err != nil {
		return false, err
	}
	if row == g.rows-1 || !rowLocked(g.cells[row]) || !rowVisible(g.cells[row+1]) {
		return false, nil
	}

	g.cells = slices.Delete(g.cells, row+1, row+2)
	g.cells = slices.Insert(g.cells, row, g.gapRow())
	g.renumber()

	dropped := row + 1
	unlock := dropped == g.rows-1 || slices.ContainsFunc(
		g.cells[dropped+1],
		func(c *Cell) bool { return !c.locked && (c.flagged || !c.visible) },
	)
	if unlock {
		for _, c := range g.cells[dropped] {
			c.Unlock()
		}
	}

	g.computeValues()

	Log.WithFields(logrus.Fields{
		"row":      row,
		"unlocked": unlock,
	}).Debug("dropped locked row")

	return true, nil
}

// LockedRows lists the indices of locked rows from the bottom up, the order
// in which they should be dropped.
func (g *Grid) LockedRows() []int {
	var rows []int
	for r := g.rows - 1; r >= 0; r-- {
		if rowLocked(g.cells[r]) {
			rows = append(rows, r)
		}
	}
	return rows
}

// TryMoveBombElsewhere turns the bomb c into a safe cell and plants a bomb
// on a random unlocked safe cell instead, keeping every count in step. It
// does nothing when there is no safe cell to move to.
func (g *Grid) TryMoveBombElsewhere(c *Cell) error {
	if !c.IsBomb() {
		return ErrNotBomb
	}
	if g.bombChance == 1 {
		return nil
	}

	var candidates []*Cell
	for _, row := range g.cells {
		for _, cell := range row {
			if !cell.IsBomb() && !cell.locked {
				candidates = append(candidates, cell)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	c.setNumber(g.countBombs(c))
	if !c.locked {
		for _, n := range g.Border(c) {
			if !n.IsBomb() {
				n.setNumber(int(n.value) - 1)
			}
		}
	}

	dest := candidates[g.rnd.IntN(len(candidates))]
	dest.setBomb()
	for _, n := range g.Border(dest) {
		if !n.IsBomb() {
			n.setNumber(int(n.value) + 1)
		}
	}

	Log.WithFields(logrus.Fields{
		"from": c.coord,
		"to":   dest.coord,
	}).Debug("moved bomb")

	return nil
}
