package mines

import (
	"errors"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Log.SetLevel(logrus.DebugLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	os.Exit(m.Run())
}

/*
layoutGrid builds a grid from rows of runes:

	. hidden safe     * hidden bomb
	o open safe       F flagged bomb
	f flagged safe    # locked safe
	@ locked bomb
*/
func layoutGrid(t *testing.T, policy RowPolicy, layout ...string) *Grid {
	t.Helper()
	g := &Grid{
		rows:   len(layout),
		policy: policy,
		rnd:    rand.New(rand.NewPCG(1, 2)),
	}
	if len(layout) > 0 {
		g.columns = len(layout[0])
	}
	bombs := 0
	for r, line := range layout {
		require.Len(t, line, g.columns, "ragged layout")
		row := make([]*Cell, g.columns)
		for c, ch := range line {
			coord := Coordinate{r, c}
			switch ch {
			case '.':
				row[c] = NewUnknownCell(coord, CellOptions{})
			case '*':
				row[c] = NewBombCell(coord, CellOptions{})
			case 'o':
				row[c] = NewUnknownCell(coord, CellOptions{Visible: true})
			case 'F':
				row[c] = NewBombCell(coord, CellOptions{})
				row[c].ToggleFlag()
			case 'f':
				row[c] = NewUnknownCell(coord, CellOptions{})
				row[c].ToggleFlag()
			case '#':
				row[c] = NewUnknownCell(coord, CellOptions{Locked: true})
			case '@':
				row[c] = NewBombCell(coord, CellOptions{Locked: true})
			default:
				t.Fatalf("unknown layout rune %q", ch)
			}
			if row[c].IsBomb() {
				bombs++
			}
		}
		g.cells = append(g.cells, row)
	}
	if total := g.rows * g.columns; total > 0 {
		g.bombChance = float64(bombs) / float64(total)
	}
	g.computeValues()
	return g
}

func mustCell(t *testing.T, g *Grid, row, column int) *Cell {
	t.Helper()
	c, err := g.Cell(Coordinate{row, column})
	require.NoError(t, err)
	return c
}

func mustValue(t *testing.T, c *Cell) int {
	t.Helper()
	v, err := c.Value()
	require.NoError(t, err)
	return v
}

// assertConsistent checks shape, coordinates and every safe cell's count
// against a count done from scratch.
func assertConsistent(t *testing.T, g *Grid) {
	t.Helper()
	m := g.Matrix()
	require.Len(t, m, g.Rows())
	for r, row := range m {
		require.Len(t, row, g.Columns())
		for c, cell := range row {
			assert.Equal(t, Coordinate{r, c}, cell.Coordinate())
			if cell.IsBomb() {
				continue
			}
			want := 0
			for rr := r - 1; rr <= r+1; rr++ {
				for cc := c - 1; cc <= c+1; cc++ {
					if rr < 0 || rr >= g.Rows() || cc < 0 || cc >= g.Columns() || (rr == r && cc == c) {
						continue
					}
					if n := m[rr][cc]; n.IsBomb() && !n.IsLocked() {
						want++
					}
				}
			}
			got, err := cell.Value()
			if assert.NoError(t, err) {
				assert.Equal(t, want, got, "count at %v", cell.Coordinate())
			}
		}
	}
}

func TestBuildMinimal(t *testing.T) {
	g, err := Build(Params{Rows: 1, Columns: 1}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Empty(t, g.Bombs())

	cell := mustCell(t, g, 0, 0)
	assert.Equal(t, 0, mustValue(t, cell))
	assert.False(t, cell.IsBomb())
	assert.False(t, cell.IsVisible())
	assert.False(t, cell.IsFlagged())
}

func TestBuildEmpty(t *testing.T) {
	g, err := Build(Params{}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Zero(t, g.Rows())
	assert.Zero(t, g.BombChance())
	assert.Empty(t, g.Matrix())
}

func TestBuildBombRow(t *testing.T) {
	g, err := Build(
		Params{Rows: 3, Columns: 3, NumBombs: 3, MinBombRow: 2},
		rand.New(rand.NewPCG(1, 2)),
	)
	require.NoError(t, err)
	assert.Len(t, g.Bombs(), 3)
	assert.InDelta(t, 1.0/3, g.BombChance(), 1e-9)

	for c := range 3 {
		assert.True(t, mustCell(t, g, 2, c).IsBomb())
		assert.Equal(t, []int{2, 3, 2}[c], mustValue(t, mustCell(t, g, 1, c)))
		top := mustCell(t, g, 0, c)
		assert.True(t, top.IsLocked())
		assert.Equal(t, 0, mustValue(t, top))
	}
	assertConsistent(t, g)
}

func TestBuildRandom(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"9x9(10)", Params{Rows: 9, Columns: 9, NumBombs: 10}},
		{"9x9(35) from row 4", Params{Rows: 9, Columns: 9, NumBombs: 35, MinBombRow: 4}},
		{"16x16(40)", Params{Rows: 16, Columns: 16, NumBombs: 40}},
		{"16x30(99) from row 8", Params{Rows: 16, Columns: 30, NumBombs: 99, MinBombRow: 8}},
		{"full", Params{Rows: 4, Columns: 4, NumBombs: 12, MinBombRow: 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, 2))
			for range 20 {
				g, err := Build(test.params, r)
				require.NoError(t, err)
				bombs := g.Bombs()
				assert.Len(t, bombs, test.params.NumBombs)
				for _, b := range bombs {
					assert.GreaterOrEqual(t, b.Coordinate().Row, test.params.MinBombRow)
				}
				for r, row := range g.Matrix() {
					for _, c := range row {
						assert.Equal(t, r < test.params.MinBombRow-1, c.IsLocked())
					}
				}
				assertConsistent(t, g)
			}
		})
	}
}

func TestBuildPlacementIsSpread(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	hits := make(map[Coordinate]int)
	for range 2000 {
		g, err := Build(Params{Rows: 3, Columns: 3, NumBombs: 1}, r)
		require.NoError(t, err)
		hits[g.Bombs()[0].Coordinate()]++
	}
	assert.Len(t, hits, 9)
	for coord, n := range hits {
		assert.InDelta(t, 2000/9, n, 80, "bomb at %v", coord)
	}
}

func TestBuildRevealOrigin(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	g, err := Build(Params{Rows: 3, Columns: 3, RevealOrigin: true}, r)
	require.NoError(t, err)
	for _, row := range g.Matrix() {
		for _, c := range row {
			assert.True(t, c.IsVisible())
		}
	}

	g, err = Build(Params{Rows: 2, Columns: 3, NumBombs: 3, MinBombRow: 1, RevealOrigin: true}, r)
	require.NoError(t, err)
	origin := mustCell(t, g, 0, 0)
	assert.True(t, origin.IsVisible())
	assert.Equal(t, 2, mustValue(t, origin))
	assert.False(t, mustCell(t, g, 0, 1).IsVisible())
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"rows", Params{Rows: -2, Columns: 1, NumBombs: 1}, "rows must be greater than or equal to 0. Received: -2"},
		{"columns", Params{Rows: 1, Columns: -2, NumBombs: 1}, "columns must be greater than or equal to 0. Received: -2"},
		{"negative bombs", Params{Rows: 10, Columns: 5, NumBombs: -1}, "bombs must be greater than or equal to 0. Received: -1"},
		{"too many bombs", Params{Rows: 10, Columns: 5, NumBombs: 26, MinBombRow: 5}, "bombs must be less than or equal to 25. Received: 26"},
		{"min bomb row", Params{Rows: 10, Columns: 5, MinBombRow: 10}, "min bomb row must be less than 10. Received: 10"},
		{"negative min bomb row", Params{Rows: 10, Columns: 5, MinBombRow: -1}, "min bomb row must be greater than or equal to 0. Received: -1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Build(test.params, rand.New(rand.NewPCG(1, 2)))
			require.Error(t, err)
			assert.EqualError(t, err, test.want)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}

func TestCellOutOfRange(t *testing.T) {
	g, err := Build(Params{Rows: 5, Columns: 5}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	tests := []struct {
		coord Coordinate
		field string
		want  string
	}{
		{Coordinate{10, 2}, "row", "row must be less than 5. Received: 10"},
		{Coordinate{-3, 2}, "row", "row must be greater than or equal to 0. Received: -3"},
		{Coordinate{0, 10}, "column", "column must be less than 5. Received: 10"},
		{Coordinate{0, -3}, "column", "column must be greater than or equal to 0. Received: -3"},
	}

	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			_, err := g.Cell(test.coord)
			var re *RangeError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, test.field, re.Field)
			assert.EqualError(t, err, test.want)
		})
	}
}

func TestBorder(t *testing.T) {
	g, err := Build(Params{Rows: 3, Columns: 3}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	tests := []struct {
		name string
		at   Coordinate
		want []Coordinate
	}{
		{"top-left", Coordinate{0, 0}, []Coordinate{{0, 1}, {1, 0}, {1, 1}}},
		{"top-right", Coordinate{0, 2}, []Coordinate{{0, 1}, {1, 1}, {1, 2}}},
		{"bottom-left", Coordinate{2, 0}, []Coordinate{{1, 0}, {1, 1}, {2, 1}}},
		{"bottom-right", Coordinate{2, 2}, []Coordinate{{1, 1}, {1, 2}, {2, 1}}},
		{"top edge", Coordinate{0, 1}, []Coordinate{{0, 0}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}},
		{"left edge", Coordinate{1, 0}, []Coordinate{{0, 0}, {0, 1}, {1, 1}, {2, 0}, {2, 1}}},
		{"bottom edge", Coordinate{2, 1}, []Coordinate{{1, 0}, {1, 1}, {1, 2}, {2, 0}, {2, 2}}},
		{"right edge", Coordinate{1, 2}, []Coordinate{{0, 1}, {0, 2}, {1, 1}, {2, 1}, {2, 2}}},
		{"interior", Coordinate{1, 1}, []Coordinate{
			{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}, {2, 2},
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got []Coordinate
			for _, c := range g.Border(mustCell(t, g, test.at.Row, test.at.Column)) {
				got = append(got, c.Coordinate())
			}
			assert.ElementsMatch(t, test.want, got)
		})
	}
}

func TestRevealFloodsWholeEmptyGrid(t *testing.T) {
	g, err := Build(Params{Rows: 5, Columns: 4}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	g.Reveal(mustCell(t, g, 0, 0), RevealOptions{})
	for _, row := range g.Matrix() {
		for _, c := range row {
			assert.True(t, c.IsVisible())
		}
	}
}

func TestRevealStopsAtNumbers(t *testing.T) {
	g := layoutGrid(t, RowsSeeded,
		"....",
		"....",
		"...*",
	)
	g.Reveal(mustCell(t, g, 0, 0), RevealOptions{})

	assert.True(t, mustCell(t, g, 1, 2).IsVisible())
	assert.True(t, mustCell(t, g, 2, 2).IsVisible())
	assert.False(t, mustCell(t, g, 2, 3).IsVisible())
}

func TestRevealIsIdempotent(t *testing.T) {
	g := layoutGrid(t, RowsSeeded, "..", ".*")
	c := mustCell(t, g, 0, 0)
	g.Reveal(c, RevealOptions{})
	before := g.String()
	g.Reveal(c, RevealOptions{})
	assert.Equal(t, before, g.String())
	assert.True(t, c.IsVisible())
}

func TestRevealDoesNotCrossFlags(t *testing.T) {
	g := layoutGrid(t, RowsSeeded, ".f.")
	g.Reveal(mustCell(t, g, 0, 0), RevealOptions{})

	assert.True(t, mustCell(t, g, 0, 0).IsVisible())
	assert.False(t, mustCell(t, g, 0, 1).IsVisible())
	assert.True(t, mustCell(t, g, 0, 1).IsFlagged())
	assert.False(t, mustCell(t, g, 0, 2).IsVisible())
}

func TestRevealFlaggedOrigin(t *testing.T) {
	g := layoutGrid(t, RowsSeeded, "f..")
	origin := mustCell(t, g, 0, 0)

	g.Reveal(origin, RevealOptions{})
	assert.False(t, origin.IsVisible())

	g.Reveal(origin, RevealOptions{RevealFlagged: true})
	assert.True(t, origin.IsVisible())
	assert.False(t, origin.IsFlagged())
	assert.True(t, mustCell(t, g, 0, 2).IsVisible())
}

func TestRevealSkipsLockedCells(t *testing.T) {
	g := layoutGrid(t, RowsSeeded, "###", "...")
	g.Reveal(mustCell(t, g, 1, 1), RevealOptions{})

	for c := range 3 {
		assert.True(t, mustCell(t, g, 1, c).IsVisible())
		assert.False(t, mustCell(t, g, 0, c).IsVisible())
	}
}

func TestRevealBombs(t *testing.T) {
	g := layoutGrid(t, RowsSeeded, "F.*", "...")
	g.RevealBombs()

	assert.True(t, mustCell(t, g, 0, 0).IsVisible())
	assert.False(t, mustCell(t, g, 0, 0).IsFlagged())
	assert.True(t, mustCell(t, g, 0, 2).IsVisible())
	assert.False(t, mustCell(t, g, 1, 0).IsVisible())
}

func TestGridString(t *testing.T) {
	g := layoutGrid(t, RowsSeeded, "##", "o*")
	assert.Equal(t, "# # \n1   \n", g.String())
}
