// Package session bridges one network connection to a room. Each session
// runs a reader goroutine (transport lines into the room) and a writer
// goroutine (outbound queue back onto the transport) around a small state
// machine.
package session

import (
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KatyaProkhorchuk/MessengerApp/room"
	"github.com/KatyaProkhorchuk/MessengerApp/wake"
)

var ErrAlreadyStarted = errors.New("session already started")

// State is the session lifecycle phase. Transitions only move forward:
// Connecting -> Active -> Closing -> Closed.
type State int

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Transport is the line-oriented connection a session owns exclusively.
// ReadLine returns one message with its terminator stripped; an over-long
// line surfaces as a read error. Close must unblock pending reads and
// writes.
type Transport interface {
	ReadLine() (string, error)
	WriteLine(message string) error
	Close() error
}

type Config struct {
	Logger    *zerolog.Logger
	Transport Transport
	Room      *room.Room
	Username  string
}

// Session owns one transport and one outbound queue. The room holds it only
// as a member reference; the registry of the listener that accepted the
// connection is the owning side.
type Session struct {
	id       string
	username string
	room     *room.Room
	tr       Transport
	sig      *wake.Signal
	done     chan struct{}
	logger   zerolog.Logger

	tasks sync.WaitGroup

	mx       sync.Mutex
	outbound []string
	state    State
}

func New(cfg Config) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		username: cfg.Username,
		room:     cfg.Room,
		tr:       cfg.Transport,
		sig:      wake.NewSignal(),
		done:     make(chan struct{}),
		logger: cfg.Logger.With().
			Str("component", "session").
			Str("sessionID", id).
			Str("username", cfg.Username).Logger(),
		state: StateConnecting,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Username() string {
	return s.username
}

func (s *Session) State() State {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.state
}

// Done is closed once the session has stopped and both of its tasks have
// exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start moves the session to Active: it joins the room (which replays recent
// history into the outbound queue), queues the private welcome line, and
// launches the reader and writer. The welcome goes through the local
// outbound path only; it is never broadcast or stored in room history.
func (s *Session) Start() error {
	s.mx.Lock()
	if s.state != StateConnecting {
		s.mx.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateActive
	s.mx.Unlock()

	s.room.Join(s)
	s.Deliver("Welcome to the chat, " + s.username + "!")

	s.tasks.Add(2)
	go func() {
		defer s.tasks.Done()
		s.reader()
	}()
	go func() {
		defer s.tasks.Done()
		s.writer()
	}()
	go func() {
		s.tasks.Wait()
		close(s.done)
	}()

	s.logger.Debug().Msg("session started")
	return nil
}

// Deliver appends message to the outbound queue and wakes the writer. It
// never blocks and never fails: once the session is closing the message is
// silently dropped, so the room's fan-out tolerates members shutting down
// concurrently.
func (s *Session) Deliver(message string) {
	s.mx.Lock()
	if s.state >= StateClosing {
		s.mx.Unlock()
		return
	}
	s.outbound = append(s.outbound, message)
	s.mx.Unlock()

	woken := s.sig.Wake()
	s.logger.Trace().Int("woken", woken).Msg("outbound message queued")
}

// Stop tears the session down: leave the room, close the transport so any
// in-flight read or write unwinds, and cancel the wake signal so a suspended
// writer exits. Reader and writer may both detect a failure and race into
// Stop; every call after the first is a no-op.
func (s *Session) Stop() {
	s.mx.Lock()
	if s.state >= StateClosing {
		s.mx.Unlock()
		return
	}
	prev := s.state
	s.state = StateClosing
	s.mx.Unlock()

	s.room.Leave(s)
	if err := s.tr.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("transport close")
	}
	s.sig.Cancel()

	s.mx.Lock()
	s.state = StateClosed
	s.mx.Unlock()
	if prev == StateConnecting {
		// Start never ran, so no tasks exist to wait for.
		close(s.done)
	}

	s.logger.Debug().Msg("session stopped")
}

func (s *Session) reader() {
	for {
		line, err := s.tr.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug().Msg("connection closed by peer")
			} else {
				s.logger.Error().Err(err).Msg("read failed")
			}
			s.Stop()
			return
		}
		s.room.Deliver(line)
	}
}

func (s *Session) writer() {
	for {
		s.mx.Lock()
		if len(s.outbound) > 0 {
			msg := s.outbound[0]
			s.outbound = s.outbound[1:]
			s.mx.Unlock()

			if err := s.tr.WriteLine(msg); err != nil {
				s.logger.Error().Err(err).Msg("write failed")
				s.Stop()
				return
			}
			continue
		}
		closing := s.state >= StateClosing
		s.mx.Unlock()

		if closing {
			return
		}
		if !s.sig.Wait() {
			// Canceled by Stop; the transport is closed, nothing left to do.
			return
		}
	}
}
