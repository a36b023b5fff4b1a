package handlers

import (
	"fmt"
	"strings"

	"github.com/gorilla/schema"

	"github.com/vancomm/minefall/internal/config"
	"github.com/vancomm/minefall/internal/game"
	"github.com/vancomm/minefall/internal/mines"
	"github.com/vancomm/minefall/internal/session"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// CreateGameDTO is decoded over the configured defaults, so every key is
// optional.
type CreateGameDTO struct {
	Rows          int    `schema:"rows"`
	Columns       int    `schema:"columns"`
	Bombs         int    `schema:"bombs"`
	MinBombRow    int    `schema:"min_bomb_row"`
	RevealOrigin  bool   `schema:"reveal_origin"`
	RowPolicy     string `schema:"row_policy"`
	AddRowSeconds int    `schema:"add_row_seconds"`

	// MaxCells caps rows*columns; it comes from the config, never the query.
	MaxCells int `schema:"-"`
}

func ParseCreateGameDTO(src map[string][]string, defaults config.Game) (CreateGameDTO, error) {
	dto := CreateGameDTO{
		Rows:          defaults.Rows,
		Columns:       defaults.Columns,
		Bombs:         defaults.Bombs,
		MinBombRow:    defaults.MinBombRow,
		RowPolicy:     defaults.RowPolicy.String(),
		AddRowSeconds: defaults.AddRowSeconds,
		MaxCells:      defaults.MaxCells,
	}
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	// a custom height moves the bomb-free zone along with it
	if _, ok := src["rows"]; ok {
		if _, ok := src["min_bomb_row"]; !ok {
			dto.MinBombRow = (dto.Rows + 1) / 2
		}
	}
	return dto, nil
}

func (dto CreateGameDTO) Options() (session.Options, error) {
	policy, err := mines.ParseRowPolicy(dto.RowPolicy)
	if err != nil {
		return session.Options{}, err
	}
	if dto.AddRowSeconds < 0 {
		return session.Options{}, fmt.Errorf("add_row_seconds must not be negative")
	}
	if err := config.CheckArea(dto.Rows, dto.Columns, dto.MaxCells); err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Params: mines.Params{
			Rows:         dto.Rows,
			Columns:      dto.Columns,
			NumBombs:     dto.Bombs,
			MinBombRow:   dto.MinBombRow,
			RevealOrigin: dto.RevealOrigin,
			RowPolicy:    policy,
		},
		AddRowSeconds: dto.AddRowSeconds,
	}, nil
}

type MoveDTO struct {
	Move   string `schema:"move,required"`
	Row    int    `schema:"row,required"`
	Column int    `schema:"column,required"`
}

var ErrBadMove = fmt.Errorf("move must be one of 'open', 'flag', 'chord'")

func ParseMoveDTO(src map[string][]string) (game.Command, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return game.Command{}, err
	}

	cmd := game.Command{Coord: mines.Coordinate{Row: dto.Row, Column: dto.Column}}
	switch strings.ToLower(dto.Move) {
	case "open":
		cmd.Verb = game.Open
	case "flag":
		cmd.Verb = game.Flag
	case "chord":
		cmd.Verb = game.Chord
	default:
		return game.Command{}, ErrBadMove
	}
	return cmd, nil
}

type SessionDTO struct {
	SessionID string `json:"session_id"`
	CreatedAt int64  `json:"created_at"`
	game.View
}

func NewSessionDTO(s *session.Session, view game.View) SessionDTO {
	return SessionDTO{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt.UnixMilli(),
		View:      view,
	}
}
