package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/ircwire-server/internal/config"
	"github.com/vovakirdan/ircwire-server/internal/core"
	"github.com/vovakirdan/ircwire-server/internal/transport/tcp"
	"github.com/vovakirdan/ircwire-server/internal/transport/web"
)

// App wires together the core and both transports.
type App struct {
	tcp             *tcp.Server
	web             *stdhttp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	c := core.New(cfg.ServerName, logger)

	return &App{
		tcp:             tcp.NewServer(cfg.Addr, c, logger),
		web:             web.NewServer(c, cfg, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
}

// Run starts both listeners and blocks until context cancellation or a
// fatal listener error. A single connection failing never reaches here.
func (a *App) Run(ctx context.Context) error {
	if err := a.tcp.Listen(); err != nil {
		return err
	}

	serverErr := make(chan error, 2)

	go func() {
		serverErr <- a.tcp.Serve(ctx)
	}()

	go func() {
		if err := a.web.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.web.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
