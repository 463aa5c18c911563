// Package auth resolves the signed-in identity from bearer tokens and makes
// it available to repositories through the request context.
package auth

import (
	"context"
	"sync"

	"gallery-la/internal/ports"
)

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id ports.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (ports.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(ports.Identity)
	return id, ok && id.ID != ""
}

// ContextProvider reads the identity bound to each request context.
type ContextProvider struct{}

func (ContextProvider) CurrentIdentity(ctx context.Context) (ports.Identity, bool) {
	return FromContext(ctx)
}

// Session holds the identity of a long-lived client, such as a CLI or a
// worker that acts for one account, and notifies listeners when it changes.
// Requests served over HTTP use ContextProvider instead.
type Session struct {
	mu        sync.Mutex
	current   *ports.Identity
	listeners map[int]func(*ports.Identity)
	next      int
}

var (
	_ ports.IdentityProvider = (*Session)(nil)
	_ ports.IdentityNotifier = (*Session)(nil)
	_ ports.IdentityProvider = ContextProvider{}
)

func NewSession() *Session {
	return &Session{listeners: map[int]func(*ports.Identity){}}
}

func (s *Session) CurrentIdentity(ctx context.Context) (ports.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ports.Identity{}, false
	}
	return *s.current, true
}

// Set signs id in, replacing any previous identity.
func (s *Session) Set(id ports.Identity) {
	s.publish(&id)
}

// Clear signs out.
func (s *Session) Clear() {
	s.publish(nil)
}

func (s *Session) publish(id *ports.Identity) {
	s.mu.Lock()
	s.current = id
	fns := make([]func(*ports.Identity), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		if id == nil {
			fn(nil)
			continue
		}
		cp := *id
		fn(&cp)
	}
}

func (s *Session) OnIdentityChange(fn func(*ports.Identity)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.next
	s.next++
	s.listeners[key] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, key)
	}
}
