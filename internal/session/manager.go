package session

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefall/internal/driver"
	"github.com/vancomm/minefall/internal/game"
	"github.com/vancomm/minefall/internal/mines"
)

var ErrNotFound = errors.New("session not found")

const DefaultIdleTimeout = 30 * time.Minute

type Options struct {
	Params mines.Params
	// AddRowSeconds is the length of the new row countdown. Zero disables
	// the timer.
	AddRowSeconds int
	// Period overrides the timer step, one second by default.
	Period time.Duration
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

// Manager keeps the running sessions by id. Sessions live under the context
// given to NewManager and stop when it is done.
type Manager struct {
	ctx             context.Context
	cleanupInterval time.Duration
	sessions        map[string]entry
	mu              sync.RWMutex

	// NewRand seeds the grid of every new game.
	NewRand func() *rand.Rand

	// IdleTimeout is how long an unwatched session may go without requests
	// before Cleanup removes it. Zero keeps idle sessions.
	IdleTimeout time.Duration
}

func NewManager(ctx context.Context, cleanupInterval time.Duration) *Manager {
	initMapSize := 10

	return &Manager{
		ctx:             ctx,
		cleanupInterval: cleanupInterval,
		sessions:        make(map[string]entry, initMapSize),
		NewRand:         createRand,
		IdleTimeout:     DefaultIdleTimeout,
	}
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// Start creates a game and runs it in a new session.
func (m *Manager) Start(opts Options) (*Session, error) {
	g, err := game.New(opts.Params, m.NewRand())
	if err != nil {
		return nil, err
	}

	var timer *driver.LoopingTimer
	if opts.AddRowSeconds != 0 {
		timer, err = driver.NewLoopingTimer(opts.AddRowSeconds)
		if err != nil {
			return nil, fmt.Errorf("invalid add row countdown: %w", err)
		}
		if opts.Period > 0 {
			timer.Period = opts.Period
		}
		g.Tick = driver.Tick{Value: timer.Seconds()}
	}

	s := New(uuid.NewString(), g, timer)
	ctx, cancel := context.WithCancel(m.ctx)

	m.mu.Lock()
	m.sessions[s.ID] = entry{session: s, cancel: cancel}
	m.mu.Unlock()

	go s.Run(ctx)

	Log.WithFields(logrus.Fields{
		"session":       s.ID,
		"rows":          opts.Params.Rows,
		"columns":       opts.Params.Columns,
		"bombs":         opts.Params.NumBombs,
		"addRowSeconds": opts.AddRowSeconds,
	}).Info("session created")

	return s, nil
}

func (m *Manager) Find(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.session, nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Terminate stops the session and forgets it.
func (m *Manager) Terminate(id string) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		e.cancel()
		Log.WithField("session", id).Debug("session terminated")
	}
}

// Cleanup terminates the sessions whose game ended at least one cleanup
// interval before now, and the unwatched ones that have been idle for
// IdleTimeout. It returns the number of sessions removed.
func (m *Manager) Cleanup(now time.Time) int {
	m.mu.Lock()
	toDelete := make([]entry, 0)
	for id, e := range m.sessions {
		if m.expired(e.session, now) {
			toDelete = append(toDelete, e)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, e := range toDelete {
		e.cancel()
		Log.WithField("session", e.session.ID).Debug("removed session")
	}
	return len(toDelete)
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	if finished, at := s.Finished(); finished {
		return now.Sub(at) >= m.cleanupInterval
	}
	return m.IdleTimeout > 0 &&
		now.Sub(s.LastActive()) >= m.IdleTimeout &&
		!s.Watched()
}

// CleanupPeriodically runs Cleanup every cleanup interval until ctx is done.
func (m *Manager) CleanupPeriodically(ctx context.Context) error {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if n := m.Cleanup(now); n > 0 {
				Log.WithField("removed", n).Info("cleaned up sessions")
			}
		}
	}
}
