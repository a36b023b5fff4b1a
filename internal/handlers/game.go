package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefall/internal/config"
	"github.com/vancomm/minefall/internal/game"
	"github.com/vancomm/minefall/internal/mines"
	"github.com/vancomm/minefall/internal/session"
)

type GameHandler struct {
	log      logrus.FieldLogger
	sessions *session.Manager
	defaults config.Game
	ws       *config.WebSocket
}

func NewGameHandler(
	log logrus.FieldLogger,
	sessions *session.Manager,
	defaults config.Game,
	ws *config.WebSocket,
) *GameHandler {
	return &GameHandler{
		log:      log,
		sessions: sessions,
		defaults: defaults,
		ws:       ws,
	}
}

// statusOf maps game errors to response codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, mines.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (g GameHandler) findSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := g.sessions.Find(r.PathValue("id"))
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusNotFound, err)
		return nil, false
	}
	return s, true
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateGameDTO(r.URL.Query(), g.defaults)
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}

	opts, err := dto.Options()
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}

	s, err := g.sessions.Start(opts)
	if errors.Is(err, mines.ErrOutOfRange) {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to start a new game")
		return
	}

	view, err := s.View(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to read new game")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, g.log, NewSessionDTO(s, view))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := g.findSession(w, r)
	if !ok {
		return
	}

	view, err := s.View(r.Context())
	if err != nil {
		sendErrorOrLog(w, g.log, statusOf(err), err)
		return
	}

	sendJSONOrLog(w, g.log, NewSessionDTO(s, view))
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	cmd, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}

	g.apply(w, r, cmd)
}

func (g GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	g.apply(w, r, game.Command{Verb: game.Forfeit})
}

func (g GameHandler) apply(w http.ResponseWriter, r *http.Request, cmd game.Command) {
	s, ok := g.findSession(w, r)
	if !ok {
		return
	}

	view, err := s.Apply(r.Context(), cmd)
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			g.log.WithFields(logrus.Fields{
				"session": s.ID,
				"command": cmd,
			}).WithError(err).Error("unable to apply command")
		}
		sendErrorOrLog(w, g.log, status, err)
		return
	}

	sendJSONOrLog(w, g.log, NewSessionDTO(s, view))
}
