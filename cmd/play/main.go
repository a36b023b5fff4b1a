// Command play runs a falling-row minesweeper game in the terminal.
//
// Commands, one per line: "o ROW COL" open, "f ROW COL" flag, "c ROW COL"
// chord, "t" push a new row in now, "r" give up, "g" redraw.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefall/internal/config"
	"github.com/vancomm/minefall/internal/game"
	"github.com/vancomm/minefall/internal/logging"
	"github.com/vancomm/minefall/internal/mines"
	"github.com/vancomm/minefall/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	var (
		rows         = flag.Int("rows", cfg.Game.Rows, "number of rows")
		columns      = flag.Int("columns", cfg.Game.Columns, "number of columns")
		bombs        = flag.Int("bombs", cfg.Game.Bombs, "number of bombs")
		minBombRow   = flag.Int("min-bomb-row", cfg.Game.MinBombRow, "first row that may hold a bomb")
		seconds      = flag.Int("seconds", cfg.Game.AddRowSeconds, "seconds between new rows, 0 to add rows by hand")
		policy       = flag.String("policy", cfg.Game.RowPolicy.String(), "what replaces cleared rows: seeded, locked or gap")
		revealOrigin = flag.Bool("reveal-origin", false, "open the top left corner at start")
	)
	flag.Parse()

	// the board owns the terminal: with a log file, logs only go there
	if _, err := logging.New(logging.OptionsFrom(cfg)); err != nil {
		logrus.WithError(err).Fatal("failed to set up logging")
	}
	for _, log := range logging.Libraries() {
		if cfg.LogFile != "" {
			log.SetOutput(io.Discard)
		} else {
			log.SetLevel(logrus.WarnLevel)
		}
	}

	rowPolicy, err := mines.ParseRowPolicy(*policy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sessions := session.NewManager(ctx, cfg.CleanupInterval)
	s, err := sessions.Start(session.Options{
		Params: mines.Params{
			Rows:         *rows,
			Columns:      *columns,
			NumBombs:     *bombs,
			MinBombRow:   *minBombRow,
			RevealOrigin: *revealOrigin,
			RowPolicy:    rowPolicy,
		},
		AddRowSeconds: *seconds,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := play(ctx, s); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func play(ctx context.Context, s *session.Session) error {
	views, unsubscribe := s.Subscribe()
	defer unsubscribe()

	view, err := s.View(ctx)
	if err != nil {
		return err
	}
	draw(view)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case view, ok := <-views:
			if !ok {
				return nil
			}
			draw(view)
			if view.Dead {
				fmt.Printf("rows cleared: %d\n", view.Cleared)
				return nil
			}

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			cmd, err := game.ParseCommand(line)
			if err == nil && cmd.Verb == game.Noop {
				view, err = s.View(ctx)
				if err == nil {
					draw(view)
				}
				continue
			}
			if err == nil {
				_, err = s.Apply(ctx, cmd)
			}
			if err != nil {
				fmt.Println("error:", err)
			}
		}
	}
}

func draw(v game.View) {
	fmt.Print("\033[H\033[2J")
	fmt.Print(v.String())
	fmt.Print("> ")
}
