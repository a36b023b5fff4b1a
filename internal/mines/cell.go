package mines

import (
	"fmt"
	"strconv"
)

type Coordinate struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Column)
}

// Value is what a cell hides: a bomb, a neighbour bomb count (0 to 8), or
// nothing yet.
type Value int8

const (
	Unknown Value = -2
	Bomb    Value = -1
	// 0-8 for a safe cell with given number of bombed neighbours
)

// Number returns the neighbour count of a safe cell. ok is false for bombs
// and for values that have not been computed.
func (v Value) Number() (n int, ok bool) {
	if v < 0 {
		return 0, false
	}
	return int(v), true
}

func (v Value) String() string {
	switch v {
	case Unknown:
		return "?"
	case Bomb:
		return "!"
	default:
		return strconv.Itoa(int(v))
	}
}

type CellOptions struct {
	Locked  bool
	Visible bool
}

type Cell struct {
	coord   Coordinate
	value   Value
	visible bool
	flagged bool
	locked  bool

	// filler cells were opened by the grid itself, not by a player
	filler bool
}

func newCell(v Value, coord Coordinate, opts CellOptions) *Cell {
	return &Cell{
		coord:   coord,
		value:   v,
		visible: opts.Visible,
		locked:  opts.Locked,
	}
}

func NewBombCell(coord Coordinate, opts CellOptions) *Cell {
	return newCell(Bomb, coord, opts)
}

// NewNumberCell creates a hidden, unlocked safe cell showing value, which
// must be a neighbour count between 0 and 8.
func NewNumberCell(value int, coord Coordinate) (*Cell, error) {
	if err := checkAtLeast("value", value, 0); err != nil {
		return nil, err
	}
	if err := checkAtMost("value", value, 8); err != nil {
		return nil, err
	}
	return newCell(Value(value), coord, CellOptions{}), nil
}

func NewUnknownCell(coord Coordinate, opts CellOptions) *Cell {
	return newCell(Unknown, coord, opts)
}

// NewZeroCell creates an unlocked safe cell with no bombed neighbours. Only
// the Visible option is honoured.
func NewZeroCell(coord Coordinate, opts CellOptions) *Cell {
	return newCell(0, coord, CellOptions{Visible: opts.Visible})
}

func (c *Cell) Coordinate() Coordinate { return c.coord }
func (c *Cell) Kind() Value            { return c.value }
func (c *Cell) IsBomb() bool           { return c.value == Bomb }
func (c *Cell) IsVisible() bool        { return c.visible }
func (c *Cell) IsFlagged() bool        { return c.flagged }
func (c *Cell) IsLocked() bool         { return c.locked }

// Value returns -1 for a bomb and the neighbour count otherwise.
func (c *Cell) Value() (int, error) {
	if c.value == Unknown {
		return 0, ErrUncomputedValue
	}
	return int(c.value), nil
}

// Reveal shows the cell and drops its flag.
func (c *Cell) Reveal() {
	c.visible = true
	c.flagged = false
}

// ToggleFlag does not look at the lock; callers must.
func (c *Cell) ToggleFlag() {
	c.flagged = !c.flagged
}

func (c *Cell) Unlock() {
	c.locked = false
}

func (c *Cell) setNumber(n int) {
	c.value = Value(n)
}

func (c *Cell) setBomb() {
	c.value = Bomb
	c.filler = false
}

// Cell implements [fmt.Stringer]
func (c *Cell) String() string {
	switch {
	case c.flagged:
		return "*"
	case !c.visible:
		return " "
	case c.value == Bomb:
		return "!"
	case c.value == 0 || c.value == Unknown:
		return " "
	default:
		return strconv.Itoa(int(c.value))
	}
}
