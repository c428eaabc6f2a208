// Package client implements the terminal chat client: it dials the server,
// sends the username handshake line, then pumps server lines to its output
// while forwarding input lines as chat messages.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/rs/zerolog"
)

var (
	ErrConnect   = errors.New("unable to connect")
	ErrHandshake = errors.New("handshake failed")
)

type Config struct {
	Logger   *zerolog.Logger
	Host     string
	Port     int
	Username string
	// In is the message source (stdin in the terminal client).
	In io.Reader
	// Out receives broadcast lines (stdout in the terminal client).
	Out io.Writer
}

type Client struct {
	logger   zerolog.Logger
	host     string
	port     int
	username string
	in       io.Reader
	out      io.Writer
}

func New(cfg Config) *Client {
	return &Client{
		logger: cfg.Logger.With().
			Str("component", "client").
			Str("username", cfg.Username).Logger(),
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		in:       cfg.In,
		out:      cfg.Out,
	}
}

// Run connects, performs the handshake, and pumps messages until the input
// ends, the server closes the connection, or ctx is canceled. Outgoing lines
// are formatted as "[<username>] <text>" by convention; the server relays
// them untouched. Empty input lines are skipped.
func (c *Client) Run(ctx context.Context) error {
	conn, err := net.Dial("tcp", net.JoinHostPort(c.host, strconv.Itoa(c.port)))
	if err != nil {
		return errors.Join(ErrConnect, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	if _, err = fmt.Fprintf(conn, "%s\n", c.username); err != nil {
		return errors.Join(ErrHandshake, err)
	}
	c.logger.Debug().Str("addr", conn.RemoteAddr().String()).Msg("connected")

	recvDone := make(chan error, 1)
	go func() {
		recvDone <- c.receive(conn)
	}()

	sendDone := make(chan error, 1)
	go func() {
		sendDone <- c.send(conn)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err = <-recvDone:
		if err != nil {
			return err
		}
		c.logger.Debug().Msg("server closed the connection")
		return nil
	case err = <-sendDone:
		return err
	}
}

func (c *Client) receive(conn net.Conn) error {
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		if _, err := fmt.Fprintln(c.out, sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (c *Client) send(conn net.Conn) error {
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		text := sc.Text()
		if text == "" {
			continue
		}
		if _, err := fmt.Fprintf(conn, "[%s] %s\n", c.username, text); err != nil {
			return err
		}
	}
	return sc.Err()
}
