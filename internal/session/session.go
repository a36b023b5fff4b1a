// Package session runs every game on its own goroutine. Player commands and
// driver ticks reach the game only through that goroutine, so the game
// itself needs no locking.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefall/internal/driver"
	"github.com/vancomm/minefall/internal/game"
)

var Log = logrus.New()

var ErrClosed = errors.New("session is closed")

// subscriber channels hold this many views before old ones get dropped
const subscriberBuffer = 4

type request struct {
	fn    func(*game.Game) error
	reply chan error
}

type Session struct {
	ID        string
	CreatedAt time.Time

	game     *game.Game
	timer    *driver.LoopingTimer
	requests chan request
	done     chan struct{}

	mu          sync.Mutex
	subscribers map[chan game.View]struct{}
	version     uint64

	finished   atomic.Bool
	finishedAt atomic.Int64
	lastActive atomic.Int64
}

// New wraps g. timer may be nil, in which case rows only come in through
// explicit [game.Step] commands.
func New(id string, g *game.Game, timer *driver.LoopingTimer) *Session {
	now := time.Now()
	s := &Session{
		ID:          id,
		CreatedAt:   now,
		game:        g,
		timer:       timer,
		requests:    make(chan request),
		done:        make(chan struct{}),
		subscribers: make(map[chan game.View]struct{}),
		version:     g.Version,
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// Run owns the game until ctx is done. It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	defer s.closeSubscribers()
	defer close(s.done)

	logger := Log.WithField("session", s.ID)
	logger.Debug("session started")

	timerCtx, stopTimer := context.WithCancel(ctx)
	defer stopTimer()

	var ticks <-chan driver.Tick
	if s.timer != nil {
		ticks = s.timer.Ticks(timerCtx)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("session stopped")
			return ctx.Err()

		case tick, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			if err := s.game.Advance(tick); err != nil {
				logger.WithError(err).Warn("unable to advance game")
			}

		case req := <-s.requests:
			s.lastActive.Store(time.Now().UnixNano())
			req.reply <- req.fn(s.game)
		}

		s.publish()

		if s.game.Dead && !s.finished.Load() {
			s.finishedAt.Store(time.Now().UnixNano())
			s.finished.Store(true)
			stopTimer()
			ticks = nil
			logger.WithField("cleared", s.game.Cleared).Info("game over")
		}
	}
}

// Do runs fn on the session goroutine and returns its error.
func (s *Session) Do(ctx context.Context, fn func(*game.Game) error) error {
	reply := make(chan error, 1)
	select {
	case s.requests <- request{fn: fn, reply: reply}:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply runs a single player command.
func (s *Session) Apply(ctx context.Context, cmd game.Command) (game.View, error) {
	var view game.View
	err := s.Do(ctx, func(g *game.Game) error {
		err := cmd.Apply(g)
		view = g.View()
		return err
	})
	return view, err
}

func (s *Session) View(ctx context.Context) (game.View, error) {
	var view game.View
	err := s.Do(ctx, func(g *game.Game) error {
		view = g.View()
		return nil
	})
	return view, err
}

// Finished reports whether the game has ended and since when.
func (s *Session) Finished() (bool, time.Time) {
	if !s.finished.Load() {
		return false, time.Time{}
	}
	return true, time.Unix(0, s.finishedAt.Load())
}

// LastActive is when the session last handled a request.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Watched reports whether anyone is subscribed to the session.
func (s *Session) Watched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) > 0
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} { return s.done }

// Subscribe returns a stream of views, one after every change to the game.
// A slow reader misses intermediate views but always gets the latest one.
// The channel is closed by cancel or when the session stops.
func (s *Session) Subscribe() (<-chan game.View, func()) {
	ch := make(chan game.View, subscriberBuffer)

	s.mu.Lock()
	select {
	case <-s.done:
		close(ch)
	default:
		s.subscribers[ch] = struct{}{}
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Session) publish() {
	if s.game.Version == s.version {
		return
	}
	s.version = s.game.Version
	view := s.game.View()

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- view:
			continue
		default:
		}
		// full: drop the oldest view
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

func (s *Session) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}
