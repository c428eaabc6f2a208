// Package room implements the broadcast hub: it tracks current membership
// and a short replay buffer, and fans every accepted message out to all
// members.
package room

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DefaultHistorySize is how many recent messages a room replays to a joiner.
const DefaultHistorySize = 10

// User is anything that can have a message pushed to it. Deliver must only
// enqueue locally: it is never allowed to block or fail from the room's
// point of view. Session is the sole implementer in the server; tests use
// fakes.
type User interface {
	Deliver(message string)
}

// Room holds membership and history for one listening endpoint. Rooms on
// different endpoints share nothing.
//
// A member that consumes its outbound queue slower than the room produces
// messages accumulates unbounded memory; there is deliberately no
// backpressure between the room and its members.
type Room struct {
	logger  zerolog.Logger
	mx      sync.Mutex
	members map[User]struct{}
	history *History
}

func NewRoom(logger *zerolog.Logger) *Room {
	return &Room{
		logger:  logger.With().Str("component", "room").Logger(),
		members: make(map[User]struct{}),
		history: NewHistory(DefaultHistorySize),
	}
}

// Join adds u to the room (no-op if it is already a member) and replays the
// stored history to it, oldest first. No other member is contacted; messages
// delivered after the join arrive through the normal broadcast path.
func (r *Room) Join(u User) {
	r.mx.Lock()
	r.members[u] = struct{}{}
	replay := r.history.Messages()
	count := len(r.members)
	r.mx.Unlock()

	for _, msg := range replay {
		u.Deliver(msg)
	}
	r.logger.Debug().Int("members", count).Int("replayed", len(replay)).Msg("user joined")
}

// Leave removes u from the room. Calling it for a non-member is a no-op.
func (r *Room) Leave(u User) {
	r.mx.Lock()
	delete(r.members, u)
	count := len(r.members)
	r.mx.Unlock()

	r.logger.Debug().Int("members", count).Msg("user left")
}

// Deliver records message in the history and pushes it to every current
// member, including the sender if the sender is a member. Fan-out works on a
// snapshot of the membership taken at call time; a member closing down
// concurrently simply ignores the push.
func (r *Room) Deliver(message string) {
	r.mx.Lock()
	r.history.Append(message)
	targets := lo.Keys(r.members)
	r.mx.Unlock()

	for _, u := range targets {
		u.Deliver(message)
	}
}

// Members reports the current number of members.
func (r *Room) Members() int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return len(r.members)
}

// HistorySnapshot returns a copy of the stored history in arrival order.
func (r *Room) HistorySnapshot() []string {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.history.Messages()
}
