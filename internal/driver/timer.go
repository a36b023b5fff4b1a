// Package driver produces the periodic ticks that make rows fall.
package driver

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefall/internal/mines"
)

var Log = logrus.New()

// Tick is the countdown state after a step. Restarted is set when the
// countdown wrapped back to its full length.
type Tick struct {
	Value     int  `json:"value"`
	Restarted bool `json:"restarted"`
}

// LoopingTimer counts down from Seconds to 1 and starts over, stepping once
// per Period.
type LoopingTimer struct {
	Period  time.Duration
	seconds int
	value   int
}

func NewLoopingTimer(seconds int) (*LoopingTimer, error) {
	if err := mines.CheckPositive("seconds", seconds); err != nil {
		return nil, err
	}
	return &LoopingTimer{
		Period:  time.Second,
		seconds: seconds,
		value:   seconds,
	}, nil
}

func (t *LoopingTimer) Seconds() int { return t.seconds }

// Next advances the countdown by one step.
func (t *LoopingTimer) Next() Tick {
	if t.value == 1 {
		t.value = t.seconds
	} else {
		t.value--
	}
	return Tick{Value: t.value, Restarted: t.value == t.seconds}
}

// Run calls onTick once per Period until ctx is done. onTick runs on the
// caller's goroutine and must return before the next tick is taken.
func (t *LoopingTimer) Run(ctx context.Context, onTick func(Tick)) error {
	ticker := time.NewTicker(t.Period)
	defer ticker.Stop()

	Log.WithFields(logrus.Fields{
		"seconds": t.seconds,
		"period":  t.Period,
	}).Debug("timer started")

	for {
		select {
		case <-ctx.Done():
			Log.Debug("timer stopped")
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			onTick(t.Next())
		}
	}
}

// Ticks runs the timer in its own goroutine and delivers the ticks on the
// returned channel, which is closed once ctx is done.
func (t *LoopingTimer) Ticks(ctx context.Context) <-chan Tick {
	ch := make(chan Tick)
	go func() {
		defer close(ch)
		t.Run(ctx, func(tick Tick) {
			select {
			case ch <- tick:
			case <-ctx.Done():
			}
		})
	}()
	return ch
}
