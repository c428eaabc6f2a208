package session

import (
	"sync"

	"github.com/samber/lo"
)

// Registry is the owning table of live sessions for one listener. A session
// stays reachable through its registry for as long as either of its tasks
// runs; it holds no reference to itself.
type Registry struct {
	mx       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Add(s *Session) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.sessions[s.ID()] = s
}

func (r *Registry) Remove(id string) {
	r.mx.Lock()
	defer r.mx.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return len(r.sessions)
}

// StopAll stops every registered session and waits for each to finish.
func (r *Registry) StopAll() {
	r.mx.Lock()
	sessions := lo.Values(r.sessions)
	r.mx.Unlock()

	for _, s := range sessions {
		s.Stop()
		<-s.Done()
	}
}

// Watch removes s from the registry once it stops.
func (r *Registry) Watch(s *Session) {
	go func() {
		<-s.Done()
		r.Remove(s.ID())
	}()
}
