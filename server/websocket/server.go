// Package websocket implements a browser-facing chat gateway speaking the
// same protocol as the TCP listener, mapped onto websocket text frames: the
// first frame carries the username, every later frame is one chat line. The
// gateway is its own listening endpoint and therefore owns its own room.
package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/KatyaProkhorchuk/MessengerApp/room"
	"github.com/KatyaProkhorchuk/MessengerApp/session"
)

const (
	defaultShutdownDeadline = 10 * time.Second

	defaultReadBufferSize  = 1024
	defaultWriteBufferSize = 1024
	// defaultMaxMessageSize mirrors the TCP line-length ceiling.
	defaultMaxMessageSize     = 1024
	defaultHandshakeTimeout   = 3 * time.Second
	defaultWriteDeadline      = 5 * time.Second
	defaultCloseWriteDeadline = 2 * time.Second
)

var (
	ErrUnexpected = errors.New("unexpected server error")
)

type Config struct {
	Logger     *zerolog.Logger
	ListenAddr string
}

type Server struct {
	base   zerolog.Logger
	logger zerolog.Logger
	room   *room.Room
	reg    *session.Registry
	ws     *websocket.Upgrader
	*http.Server
}

func NewServer(cfg Config) *Server {
	srv := &Server{
		base: *cfg.Logger,
		logger: cfg.Logger.With().
			Str("component", "websocket-server").Logger(),
		room: room.NewRoom(cfg.Logger),
		reg:  session.NewRegistry(),
		ws: &websocket.Upgrader{
			HandshakeTimeout: defaultHandshakeTimeout,
			ReadBufferSize:   defaultReadBufferSize,
			WriteBufferSize:  defaultWriteBufferSize,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat", srv.chat)

	srv.Server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}
	return srv
}

// Room exposes the gateway's room for inspection.
func (srv *Server) Room() *room.Room {
	return srv.room
}

func (srv *Server) Run(ctx context.Context, wg *sync.WaitGroup, errc chan<- error) {
	defer func() {
		srv.logger.Debug().Msg("server stopped")
		wg.Done()
	}()

	errSrv := make(chan error)
	go func() {
		errSrv <- srv.ListenAndServe()
	}()

	srv.logger.Info().Str("addr", srv.Addr).Msg("server started")

	select {
	case err := <-errSrv:
		if !errors.Is(err, http.ErrServerClosed) {
			errc <- errors.Join(ErrUnexpected, err)
		}
	case <-ctx.Done():
		shCtx, shCancel := context.WithTimeout(context.Background(), defaultShutdownDeadline)
		defer shCancel()
		if err := srv.Shutdown(shCtx); err != nil {
			srv.logger.Error().Err(err).Msg("server shutdown failed")
		}
	}
	srv.reg.StopAll()
}

// chat upgrades the connection and performs the username handshake: the
// first text frame names the user, exactly like the first line on TCP. A
// connection failing the handshake is discarded before any room contact.
func (srv *Server) chat(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.ws.Upgrade(w, r, nil)
	if err != nil {
		srv.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(defaultMaxMessageSize)

	tr := newWSTransport(conn)
	username, err := tr.ReadLine()
	if err != nil {
		srv.logger.Error().Err(err).
			Str("remote", conn.RemoteAddr().String()).
			Msg("failed to read username")
		_ = tr.Close()
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
