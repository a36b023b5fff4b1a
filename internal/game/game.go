// Package game applies the rules of falling-row minesweeper on top of a
// [mines.Grid]: the first open is always safe, opening a bomb or running out
// of room loses, and every cleared row scores.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefall/internal/driver"
	"github.com/vancomm/minefall/internal/mines"
)

var Log = logrus.New()

var ErrGameOver = errors.New("game is over")

// Game is not safe for concurrent use. It has to be owned by a single
// goroutine, see [session.Session].
type Game struct {
	Dead    bool
	Cleared int
	Version uint64
	Tick    driver.Tick

	grid    *mines.Grid
	started bool
}

func New(params mines.Params, r *rand.Rand) (*Game, error) {
	grid, err := mines.Build(params, r)
	if err != nil {
		return nil, fmt.Errorf("unable to build grid: %w", err)
	}
	return &Game{grid: grid}, nil
}

func (g *Game) Grid() *mines.Grid { return g.grid }

func (g *Game) touch() { g.Version++ }

func (g *Game) lose() {
	g.Dead = true
	g.grid.RevealBombs()
	Log.WithFields(logrus.Fields{
		"cleared": g.Cleared,
		"version": g.Version,
	}).Debug("game lost")
}

func (g *Game) clearRows() {
	if n := g.grid.RemoveClearedRows(); n > 0 {
		g.Cleared += n
		Log.WithField("rows", n).Debug("rows cleared")
	}
}

// Open reveals the cell at coord. Locked, flagged and open cells are left
// alone.
func (g *Game) Open(coord mines.Coordinate) error {
	if g.Dead {
		return ErrGameOver
	}
	c, err := g.grid.Cell(coord)
	if err != nil {
		return err
	}
	if c.IsLocked() || c.IsFlagged() || c.IsVisible() {
		return nil
	}

	if !g.started {
		g.started = true
		if c.IsBomb() {
			if err := g.grid.TryMoveBombElsewhere(c); err != nil {
				return err
			}
		}
	}

	defer g.touch()
	g.grid.Reveal(c, mines.RevealOptions{})
	if c.IsBomb() {
		g.lose()
		return nil
	}
	g.clearRows()
	return nil
}

// Flag toggles the flag on a hidden, unlocked cell.
func (g *Game) Flag(coord mines.Coordinate) error {
	if g.Dead {
		return ErrGameOver
	}
	c, err := g.grid.Cell(coord)
	if err != nil {
		return err
	}
	if c.IsLocked() || c.IsVisible() {
		return nil
	}

	defer g.touch()
	c.ToggleFlag()
	g.clearRows()
	return nil
}

// Chord opens the unflagged neighbours of an open number once as many
// neighbours are flagged as the number says.
func (g *Game) Chord(coord mines.Coordinate) error {
	if g.Dead {
		return ErrGameOver
	}
	c, err := g.grid.Cell(coord)
	if err != nil {
		return err
	}
	n, ok := c.Kind().Number()
	if !c.IsVisible() || !ok || n == 0 {
		return nil
	}

	border := g.grid.Border(c)
	flagged := 0
	for _, b := range border {
		if b.IsFlagged() {
			flagged++
		}
	}
	if flagged != n {
		return nil
	}

	defer g.touch()
	for _, b := range border {
		if b.IsLocked() || b.IsFlagged() || b.IsVisible() {
			continue
		}
		g.grid.Reveal(b, mines.RevealOptions{})
		if b.IsBomb() {
			g.lose()
			return nil
		}
	}
	g.clearRows()
	return nil
}

// Forfeit ends the game and shows every bomb.
func (g *Game) Forfeit() {
	if g.Dead {
		return
	}
	defer g.touch()
	g.lose()
}

// Advance applies a driver tick: a restarted countdown pushes a new locked
// row in (and loses when there is no room for it), and every tick lets the
// locked rows fall one step.
func (g *Game) Advance(tick driver.Tick) error {
	if g.Dead {
		return ErrGameOver
	}
	defer g.touch()
	g.Tick = tick

	if tick.Restarted && !g.grid.TryAddNewRow() {
		Log.Debug("no room for a new row")
		g.lose()
		return nil
	}

	for _, row := range g.grid.LockedRows() {
		if _, err := g.grid.TryDropLockedRow(row); err != nil {
			return err
		}
	}
	return nil
}
