package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/KatyaProkhorchuk/MessengerApp/client"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	var (
		username = fs.StringP("username", "u", "", "chat username (required)")
		host     = fs.StringP("host", "H", "localhost", "server host")
		port     = fs.IntP("port", "p", 4000, "server port")
		logLevel = fs.StringP("log-level", "l", "info", "log level")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}
	if *username == "" {
		logger.Fatal().Msg("username is required")
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := client.New(client.Config{
		Logger:   &logger,
		Host:     *host,
		Port:     *port,
		Username: *username,
		In:       os.Stdin,
		Out:      os.Stdout,
	})
	if err = c.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("client terminated")
	}
}
