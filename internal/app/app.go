package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefall/internal/config"
	"github.com/vancomm/minefall/internal/middleware"
	"github.com/vancomm/minefall/internal/session"
)

type App struct {
	log      *logrus.Logger
	cfg      *config.App
	router   *http.ServeMux
	sessions *session.Manager
	ws       *config.WebSocket
}

func New(log *logrus.Logger, cfg *config.App) *App {
	router := http.NewServeMux()

	app := &App{
		log:    log,
		cfg:    cfg,
		router: router,
	}

	return app
}

// Handler is the router with every middleware applied.
func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Logging(a.log),
		middleware.Cors(a.cfg.AllowedOrigins...),
	)
}

// Start serves on the configured port until ctx is done, then shuts down
// gracefully.
func (a *App) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Port)
	if err != nil {
		return fmt.Errorf("unable to listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ws, err := config.NewWebSocket()
	if err != nil {
		return err
	}
	a.ws = ws

	g, ctx := errgroup.WithContext(ctx)

	a.sessions = session.NewManager(ctx, a.cfg.CleanupInterval)
	a.sessions.IdleTimeout = a.cfg.IdleTimeout
	a.loadRoutes()

	server := &http.Server{
		Handler: a.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g.Go(func() error {
		a.log.WithField("addr", ln.Addr().String()).Info("server listening")
		err := server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := a.sessions.CleanupPeriodically(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
