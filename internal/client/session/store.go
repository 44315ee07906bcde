package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkarpov/examgate/internal/client/token"
	"github.com/dkarpov/examgate/internal/logging"
)

// ErrExpiredSession is returned by SetSession when a login exchange hands
// back a token that is already past its expiry.
var ErrExpiredSession = errors.New("session expired")

// timeNow is a test seam for the clock.
var timeNow = time.Now

// State is the lifecycle phase of the Store.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Session is the authenticated identity held by the Store. A Session is
// immutable once constructed; every transition replaces it wholesale.
type Session struct {
	Raw    string
	Claims token.Claims
	Role   Role
}

// TokenRepository persists the raw session token between runs. The Store is
// its only writer.
type TokenRepository interface {
	// LoadToken returns the persisted raw token, or "" when none is stored.
	LoadToken(ctx context.Context) (string, error)
	// SaveSession stores the raw token together with its subject.
	SaveSession(ctx context.Context, raw, subject string) error
	// Clear removes everything SaveSession stored.
	Clear(ctx context.Context) error
}

// CredentialSetter attaches or removes the default Authorization bearer
// token on outbound requests. Implemented by the API client.
type CredentialSetter interface {
	SetAuthToken(raw string)
	ClearAuthToken()
}

type subscriber struct {
	id int
	fn func(State, *Session)
}

// Store is the process-wide source of truth for the current session.
type Store struct {
	mu      sync.Mutex
	state   State
	current *Session

	tokens TokenRepository
	creds  CredentialSetter
	log    logging.Logger

	subs   []subscriber
	nextID int
}

// NewStore returns an uninitialized Store. Call Init before anything reads it.
func NewStore(tokens TokenRepository, creds CredentialSetter, log logging.Logger) *Store {
	return &Store{
		state:  StateUninitialized,
		tokens: tokens,
		creds:  creds,
		log:    log.With("component", "session"),
	}
}

// State returns the current lifecycle phase.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the active session, or nil outside StateAuthenticated.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Role returns the active session's role, or "" when anonymous.
func (s *Store) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Role
}

// Subscribe registers fn to be invoked synchronously on every state
// transition, in subscription order. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(State, *Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Init hydrates the Store from persisted state. It runs exactly once; later
// calls are no-ops. The Loading phase begins and ends within this call, so
// by the time Init returns every reader observes either Anonymous or
// Authenticated.
//
// Token problems found during hydration (unreadable storage, malformed
// token, expired token) are resolved locally: the persisted token is
// cleared and the Store lands in Anonymous. They are never surfaced as
// errors.
func (s *Store) Init(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return
	}
	s.transitionLocked(StateLoading, nil)

	raw, err := s.tokens.LoadToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "token storage unreadable, starting anonymous", "error", err)
		raw = ""
	}

	if raw == "" {
		s.transitionLocked(StateAnonymous, nil)
		s.mu.Unlock()
		return
	}

	claims, err := token.Decode(raw)
	if err != nil || claims.Expired(timeNow()) {
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.log.Warn(ctx, "could not clear stale token", "error", clearErr)
		}
		s.transitionLocked(StateAnonymous, nil)
		s.mu.Unlock()
		return
	}

	s.creds.SetAuthToken(raw)
	s.transitionLocked(StateAuthenticated, &Session{
		Raw:    raw,
		Claims: claims,
		Role:   ResolveRole(claims),
	})
	s.mu.Unlock()
}

// SetSession establishes or replaces the session from a raw token. It is
// the single authorized entry point for every login variant: it persists
// the token, decodes claims, resolves the role, attaches the credential
// header, transitions to Authenticated, and notifies subscribers, all
// before returning, so navigation triggered by the same login action never
// observes a stale anonymous state.
//
// On any failure the Store is left exactly as it was.
func (s *Store) SetSession(ctx context.Context, raw string) error {
	claims, err := token.Decode(raw)
	if err != nil {
		return fmt.Errorf("decoding session token: %w", err)
	}
	if claims.Expired(timeNow()) {
		return ErrExpiredSession
	}

	if err := s.tokens.SaveSession(ctx, raw, claims.Subject); err != nil {
		return fmt.Errorf("persisting session token: %w", err)
	}

	s.creds.SetAuthToken(raw)

	s.mu.Lock()
	s.transitionLocked(StateAuthenticated, &Session{
		Raw:    raw,
		Claims: claims,
		Role:   ResolveRole(claims),
	})
	s.mu.Unlock()

	s.log.Info(ctx, "session established", "subject", claims.Subject)
	return nil
}

// ClearSession removes the persisted token, clears the credential header,
// and transitions to Anonymous. The local transition happens even when
// storage cannot be cleared; the storage error is returned so the caller
// can report it.
func (s *Store) ClearSession(ctx context.Context) error {
	clearErr := s.tokens.Clear(ctx)

	s.creds.ClearAuthToken()

	s.mu.Lock()
	s.transitionLocked(StateAnonymous, nil)
	s.mu.Unlock()

	if clearErr != nil {
		return fmt.Errorf("clearing persisted token: %w", clearErr)
	}
	return nil
}

// transitionLocked replaces the state and session and notifies subscribers.
// Callers must hold s.mu. Subscribers run synchronously with the lock held;
// they must not call back into the Store.
func (s *Store) transitionLocked(state State, sess *Session) {
	s.state = state
	s.current = sess
	for _, sub := range s.subs {
		sub.fn(state, sess)
	}
}
