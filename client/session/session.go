// Package session tracks who is logged in on the client side.
package session

import (
	"context"
	"sync"

	"restaurant/client/api"

	"go.uber.org/zap"
)

// Authenticator is the part of the API client a session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*api.AuthResponse, error)
	Me(ctx context.Context, token string) (*api.User, error)
}

type Listener func(user *api.User)

// Session holds the current user. Login, Register and Bootstrap never return
// errors: every failure ends as an anonymous session and is only logged.
type Session struct {
	api    Authenticator
	tokens TokenStore
	log    *zap.Logger

	mu        sync.RWMutex
	user      *api.User
	token     string
	loading   bool
	listeners map[int]Listener
	nextID    int
}

func New(a Authenticator, tokens TokenStore, log *zap.Logger) *Session {
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		api:       a,
		tokens:    tokens,
		log:       log,
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// Bootstrap restores a stored token by asking the server who it belongs to.
// Loading stays true until it returns.
func (s *Session) Bootstrap(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token, err := s.tokens.Load()
	if err != nil {
		s.log.Debug("load stored token", zap.Error(err))
		return
	}
	if token == "" {
		return
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		s.log.Debug("stored token rejected", zap.Error(err))
		s.discard()
		return
	}
	s.set(token, user)
}

func (s *Session) Login(ctx context.Context, email, password string) bool {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Debug("login failed", zap.Int("status", api.StatusOf(err)), zap.Error(err))
		return false
	}
	return s.accept(res)
}

func (s *Session) Register(ctx context.Context, name, email, password string) bool {
	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		s.log.Debug("register failed", zap.Int("status", api.StatusOf(err)), zap.Error(err))
		return false
	}
	return s.accept(res)
}

// Logout forgets the token and user without contacting the server.
func (s *Session) Logout() {
	s.discard()
}

func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// Subscribe is called with the new user (nil when logged out) on every change.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) accept(res *api.AuthResponse) bool {
	if res == nil || res.Token == "" {
		return false
	}
	if err := s.tokens.Save(res.Token); err != nil {
		s.log.Debug("save token", zap.Error(err))
	}
	user := res.User
	s.set(res.Token, &user)
	return true
}

func (s *Session) set(token string, user *api.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	s.notify()
}

func (s *Session) discard() {
	if err := s.tokens.Clear(); err != nil {
		s.log.Debug("clear token", zap.Error(err))
	}
	s.set("", nil)
}

func (s *Session) notify() {
	user := s.User()
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()
	for _, l := range listeners {
		l(user)
	}
}
