// Package tcp implements the plain-TCP chat listener: it accepts
// connections, performs the one-line username handshake, and hands each
// connection to a session bound to this listener's room.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/KatyaProkhorchuk/MessengerApp/room"
	"github.com/KatyaProkhorchuk/MessengerApp/session"
)

var (
	ErrUnexpected = errors.New("unexpected server error")
)

type Config struct {
	Logger     *zerolog.Logger
	ListenAddr string
}

// Server owns one listening endpoint and the room attached to it. Rooms are
// strictly per endpoint; two servers never share membership or history.
type Server struct {
	base   zerolog.Logger
	logger zerolog.Logger
	room   *room.Room
	reg    *session.Registry
	addr   string

	mx  sync.Mutex
	lis net.Listener
}

func NewServer(cfg Config) *Server {
	return &Server{
		base: *cfg.Logger,
		logger: cfg.Logger.With().
			Str("component", "tcp-server").
			Str("addr", cfg.ListenAddr).Logger(),
		room: room.NewRoom(cfg.Logger),
		reg:  session.NewRegistry(),
		addr: cfg.ListenAddr,
	}
}

// Room exposes the server's room for inspection.
func (srv *Server) Room() *room.Room {
	return srv.room
}

// Listen binds the configured address. Run calls it implicitly when it was
// not called before; calling it first lets the caller learn the bound
// address (useful with ":0").
func (srv *Server) Listen() error {
	lis, err := net.Listen("tcp", srv.addr)
	if err != nil {
		return errors.Join(ErrUnexpected, err)
	}
	srv.mx.Lock()
	srv.lis = lis
	srv.mx.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (srv *Server) Addr() net.Addr {
	srv.mx.Lock()
	defer srv.mx.Unlock()
	if srv.lis == nil {
		return nil
	}
	return srv.lis.Addr()
}

func (srv *Server) Run(ctx context.Context, wg *sync.WaitGroup, errc chan<- error) {
	defer func() {
		srv.logger.Debug().Msg("server stopped")
		wg.Done()
	}()

	srv.mx.Lock()
	lis := srv.lis
	srv.mx.Unlock()
	if lis == nil {
		if err := srv.Listen(); err != nil {
			errc <- err
			return
		}
		lis = srv.lis
	}

	accErr := make(chan error, 1)
	go func() {
		accErr <- srv.acceptLoop(lis)
	}()

	srv.logger.Info().Msg("server started")

	select {
	case err := <-accErr:
		if err != nil {
			errc <- errors.Join(ErrUnexpected, err)
		}
		_ = lis.Close()
	case <-ctx.Done():
		_ = lis.Close()
	}
	srv.reg.StopAll()
}

func (srv *Server) acceptLoop(lis net.Listener) error {
	for {
		conn, err := lis.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go srv.handshake(conn)
	}
}

// handshake reads exactly one line (the username) before a session exists.
// A connection that fails here is discarded without ever touching the room.
func (srv *Server) handshake(conn net.Conn) {
	tr := NewLineTransport(conn)
	username, err := tr.ReadLine()
	if err != nil {
		srv.logger.Error().Err(err).
			Str("remote", conn.RemoteAddr().String()).
			Msg("failed to read username")
		_ = conn.Close()
		return
	}

	s := session.New(session.Config{
		Logger:    &srv.base,
		Transport: tr,
		Room:      srv.room,
		Username:  username,
	})
	srv.reg.Add(s)
	srv.reg.Watch(s)
	if err = s.Start(); err != nil {
		srv.logger.Error().Err(err).Msg("failed to start session")
		return
	}
	srv.logger.Debug().
		Str("remote", conn.RemoteAddr().String()).
		Str("username", username).
		Msg("session established")
}
