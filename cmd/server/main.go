package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/vovakirdan/ircwire-server/internal/app"
	"github.com/vovakirdan/ircwire-server/internal/config"
	"github.com/vovakirdan/ircwire-server/internal/log"
)

func main() {
	var (
		configPath string
		flagCfg    config.Config
	)

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&flagCfg.Addr, "addr", "", "TCP listen address")
	flag.StringVar(&flagCfg.HTTPAddr, "http-addr", "", "HTTP listen address (ws bridge, metrics)")
	flag.StringVar(&flagCfg.ServerName, "server-name", "", "server name used in reply prefixes")
	flag.StringVar(&flagCfg.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&flagCfg.LogFile, "log-file", "", "rotating log file path")
	flag.DurationVar(&flagCfg.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	flag.Parse()

	bootstrap := log.New("info", "")
	cfg, path, err := config.Load(bootstrap, configPath)
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.UpdateFrom(flagCfg)

	logger := log.New(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)

	logger.Info().
		Str("addr", cfg.Addr).
		Str("http_addr", cfg.HTTPAddr).
		Str("server_name", cfg.ServerName).
		Str("config", path).
		Msg("starting ircwire server")

	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
