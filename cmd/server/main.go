package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/KatyaProkhorchuk/MessengerApp/config"
	tcpServer "github.com/KatyaProkhorchuk/MessengerApp/server/tcp"
	websocketServer "github.com/KatyaProkhorchuk/MessengerApp/server/websocket"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read environment configuration")
	}

	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	var (
		ports    = fs.IntSliceP("ports", "p", cfg.Ports, "TCP listening ports, one room per port")
		wsAddr   = fs.StringP("ws-listen-addr", "w", cfg.WSListenAddr, "websocket gateway listen address (empty disables the gateway)")
		logLevel = fs.StringP("log-level", "l", cfg.LogLevel, "log level")
	)
	if err = fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}
	cfg.Ports = *ports
	cfg.WSListenAddr = *wsAddr
	cfg.LogLevel = *logLevel

	if err = cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		wg   = &sync.WaitGroup{}
		errc = make(chan error, len(cfg.Ports)+1)
	)
	for _, addr := range cfg.ListenAddrs() {
		srv := tcpServer.NewServer(tcpServer.Config{
			Logger:     &logger,
			ListenAddr: addr,
		})
		wg.Add(1)
		go srv.Run(ctx, wg, errc)
	}
	if cfg.WSListenAddr != "" {
		wsSrv := websocketServer.NewServer(websocketServer.Config{
			Logger:     &logger,
			ListenAddr: cfg.WSListenAddr,
		})
		wg.Add(1)
		go wsSrv.Run(ctx, wg, errc)
	}

	select {
	case err = <-errc:
		logger.Error().Err(err).Msg("unexpected server error, shutting down")
	case <-ctx.Done():
		logger.Warn().Msg("interrupted")
	}
	cancel()
	wg.Wait()
}
