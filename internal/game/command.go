package game

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vancomm/minefall/internal/driver"
	"github.com/vancomm/minefall/internal/mines"
)

type Verb string

const (
	Noop    Verb = "g"
	Open    Verb = "o"
	Flag    Verb = "f"
	Chord   Verb = "c"
	Forfeit Verb = "r"
	Step    Verb = "t" // push a new row in right away
)

// Maps known commands to number of arguments
var commandNargs = map[Verb]int{
	Noop:    0,
	Open:    2,
	Flag:    2,
	Chord:   2,
	Forfeit: 0,
	Step:    0,
}

type Command struct {
	Verb  Verb
	Coord mines.Coordinate
}

func parseRowColumn(twoStrings []string) (coord mines.Coordinate, err error) {
	if coord.Row, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = errors.New("first argument must be an int")
		return
	}
	if coord.Column, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = errors.New("second argument must be an int")
		return
	}
	return
}

// ParseCommand reads one command line such as "o 3 4" (open row 3,
// column 4), "f 0 1", "c 2 2", "r" or "g".
func ParseCommand(s string) (Command, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return Command{}, errors.New("empty command")
	}
	verb := Verb(parts[0])
	nargs, ok := commandNargs[verb]
	if !ok {
		return Command{}, errors.New("unknown command")
	}
	if nargs != len(parts)-1 {
		return Command{}, errors.New("invalid number of arguments")
	}
	cmd := Command{Verb: verb}
	if nargs == 2 {
		coord, err := parseRowColumn(parts[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.Coord = coord
	}
	return cmd, nil
}

func (c Command) Apply(g *Game) error {
	switch c.Verb {
	case Noop:
		return nil
	case Open:
		return g.Open(c.Coord)
	case Flag:
		return g.Flag(c.Coord)
	case Chord:
		return g.Chord(c.Coord)
	case Forfeit:
		g.Forfeit()
		return nil
	case Step:
		return g.Advance(driver.Tick{Restarted: true})
	}
	return errors.New("invalid command")
}
