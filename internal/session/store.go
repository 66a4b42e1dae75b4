// Package session gives every browser its own form component, keyed by a
// cookie.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/csg33k/workreports/internal/form"
)

const CookieName = "reports_session"

type entry struct {
	form     *form.State
	lastSeen time.Time
}

type Store struct {
	mu      sync.Mutex
	newForm func() *form.State
	now     func() time.Time
	forms   map[string]*entry
}

func New(newForm func() *form.State) *Store {
	return &Store{newForm: newForm, now: time.Now, forms: make(map[string]*entry)}
}

// Get returns the caller's form, creating one (and setting the cookie) when
// the request carries no known session id.
func (s *Store) Get(w http.ResponseWriter, r *http.Request) *form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.lookup(r); ok {
		return e.form
	}
	id := uuid.NewString()
	f := s.newForm()
	s.forms[id] = &entry{form: f, lastSeen: s.now()}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return f
}

// Peek returns the caller's form, or a fresh unsaved one when the request has
// no session. Nothing is stored and no cookie is set, so read-only pages do
// not allocate sessions.
func (s *Store) Peek(r *http.Request) *form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.lookup(r); ok {
		return e.form
	}
	return s.newForm()
}

// Lookup returns the form for an existing session without creating one.
func (s *Store) Lookup(r *http.Request) (*form.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(r)
	if !ok {
		return nil, false
	}
	return e.form, true
}

// lookup must be called with mu held. A hit refreshes lastSeen.
func (s *Store) lookup(r *http.Request) (*entry, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	e, ok := s.forms[c.Value]
	if ok {
		e.lastSeen = s.now()
	}
	return e, ok
}

// Sweep drops sessions not seen for longer than maxIdle and reports how many
// were removed.
func (s *Store) Sweep(now time.Time, maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.forms {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(s.forms, id)
			n++
		}
	}
	return n
}

// SweepEvery runs Sweep on each tick until ctx is done.
func (s *Store) SweepEvery(ctx context.Context, interval, maxIdle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Sweep(now, maxIdle); n > 0 {
				slog.Info("expired idle sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}
