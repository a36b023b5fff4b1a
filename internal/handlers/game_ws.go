package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefall/internal/game"
	"github.com/vancomm/minefall/internal/session"
)

const writeWait = 10 * time.Second

// ConnectWS streams the game over a websocket. The client sends text frames
// with one command per line (see [game.ParseCommand]); the server answers
// with the game view as JSON after every change, including the ones made by
// the timer, and with {"error": ...} for commands that failed.
func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, ok := g.findSession(w, r)
	if !ok {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("upgrade")
		return
	}
	defer conn.Close()

	log := g.log.WithField("session", s.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	views, unsubscribe := s.Subscribe()
	defer unsubscribe()

	view, err := s.View(ctx)
	if err != nil {
		log.WithError(err).Warn("session gone before connect")
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(NewSessionDTO(s, view)); err != nil {
		log.WithError(err).Warn("write")
		return
	}

	replies := make(chan any, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		g.writeLoop(ctx, conn, s, views, replies, log)
	}()
	defer func() {
		cancel()
		<-writerDone
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("read")
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}

		for _, line := range strings.Split(string(message), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			cmd, err := game.ParseCommand(line)
			if err == nil {
				_, err = s.Apply(ctx, cmd)
			}
			if errors.Is(err, session.ErrClosed) || errors.Is(err, context.Canceled) {
				return
			}
			if err != nil {
				select {
				case replies <- wrapError(err):
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (g GameHandler) writeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	s *session.Session,
	views <-chan game.View,
	replies <-chan any,
	log logrus.FieldLogger,
) {
	write := func(v any) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			log.WithError(err).Warn("write")
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case view, ok := <-views:
			if !ok {
				// session is gone, tell the client and unblock the reader
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				conn.Close()
				return
			}
			if !write(NewSessionDTO(s, view)) {
				conn.Close()
				return
			}
		case reply := <-replies:
			if !write(reply) {
				conn.Close()
				return
			}
		}
	}
}
