package config

import (
	"fmt"
	"os"

	"github.com/vancomm/minefall/internal/mines"
)

// Game holds the defaults for new games. Requests may override any of them.
type Game struct {
	Rows          int
	Columns       int
	Bombs         int
	MinBombRow    int
	AddRowSeconds int
	RowPolicy     mines.RowPolicy
	// MaxCells bounds rows*columns of any game, zero means no bound.
	MaxCells int
}

func NewGame() (*Game, error) {
	var (
		g   Game
		err error
	)
	if g.Rows, err = lookupInt("GAME_ROWS", 9); err != nil {
		return nil, err
	}
	if g.Columns, err = lookupInt("GAME_COLUMNS", 9); err != nil {
		return nil, err
	}
	if g.Bombs, err = lookupInt("GAME_BOMBS", 10); err != nil {
		return nil, err
	}
	// lower half of the board by default
	if g.MinBombRow, err = lookupInt("GAME_MIN_BOMB_ROW", (g.Rows+1)/2); err != nil {
		return nil, err
	}
	if g.AddRowSeconds, err = lookupInt("GAME_ADD_ROW_SECONDS", 5); err != nil {
		return nil, err
	}
	if g.AddRowSeconds < 0 {
		return nil, fmt.Errorf("GAME_ADD_ROW_SECONDS must not be negative")
	}
	if g.RowPolicy, err = mines.ParseRowPolicy(os.Getenv("GAME_ROW_POLICY")); err != nil {
		return nil, err
	}
	if g.MaxCells, err = lookupInt("GAME_MAX_CELLS", 10000); err != nil {
		return nil, err
	}
	if g.MaxCells < 0 {
		return nil, fmt.Errorf("GAME_MAX_CELLS must not be negative")
	}
	if err := CheckArea(g.Rows, g.Columns, g.MaxCells); err != nil {
		return nil, err
	}

	if err := g.Params().Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// CheckArea fails when a rows by columns grid has more than maxCells cells.
// Negative sizes are left to [mines.Params.Validate].
func CheckArea(rows, columns, maxCells int) error {
	if maxCells <= 0 || rows <= 0 || columns <= 0 {
		return nil
	}
	if rows > maxCells/columns {
		return fmt.Errorf(
			"rows * columns must be at most %d. Received: %d * %d",
			maxCells, rows, columns,
		)
	}
	return nil
}

func (g Game) Params() mines.Params {
	return mines.Params{
		Rows:       g.Rows,
		Columns:    g.Columns,
		NumBombs:   g.Bombs,
		MinBombRow: g.MinBombRow,
		RowPolicy:  g.RowPolicy,
	}
}
