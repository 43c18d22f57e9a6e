// Package session holds the authenticated identity and persists it across
// restarts. Every other component reads identity through Store.Current,
// never by reaching into storage directly.
package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-indicator-client/session/storage"
)

const sessionKey = "session"

// persistedSession is the single storage payload. Identity and token live in
// one key so a partial write (token without identity, or vice versa) is never
// observable.
type persistedSession struct {
	Identity Identity `json:"identity"`
	Token    string   `json:"token"`
}

// CacheClearer is what the Store needs from the TTL cache on logout: stale
// per-user data must not survive into a new session.
type CacheClearer interface {
	Clear()
}

type Store struct {
	storage storage.Repo
	cache   CacheClearer
	nowTime func() time.Time

	mu      sync.RWMutex
	current *Identity
	token   string
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// NewStore initializes a session store over the given persistent storage.
// cache may be nil when no TTL cache participates (tests).
func NewStore(storageRepo storage.Repo, cache CacheClearer, options ...StoreOption) (*Store, error) {
	if storageRepo == nil {
		return nil, errors.New("[NewStore] storage repo is required")
	}

	s := &Store{
		storage: storageRepo,
		cache:   cache,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Restore reads the persisted identity at startup. A malformed or unreadable
// payload is discarded and treated as no session; startup never fails here.
func (s *Store) Restore() *Identity {
	payload, err := s.storage.Read(sessionKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("session storage unreadable, starting unauthenticated")
		}
		return nil
	}

	var persisted persistedSession
	if err := json.Unmarshal([]byte(payload), &persisted); err != nil {
		log.Warn().Err(err).Msg("discarding malformed persisted session")
		_ = s.storage.Delete(sessionKey)
		return nil
	}

	s.mu.Lock()
	s.current = &persisted.Identity
	s.token = persisted.Token
	s.mu.Unlock()
	return &persisted.Identity
}

// Login persists identity and token atomically from the caller's point of
// view and makes them the live session.
func (s *Store) Login(identity Identity, token string) error {
	if !identity.Role.Known() {
		log.Warn().Str("role", string(identity.Role)).Msg("logging in with unrecognized role, no access will be granted")
	}

	payload, err := json.Marshal(persistedSession{Identity: identity, Token: token})
	if err != nil {
		return errors.Wrap(err, "[Store.Login] marshal session")
	}
	if err := s.storage.Write(sessionKey, string(payload)); err != nil {
		return errors.Wrap(err, "[Store.Login] persist session")
	}

	s.mu.Lock()
	s.current = &identity
	s.token = token
	s.mu.Unlock()
	return nil
}

// Logout clears the persisted identity/token and the TTL cache. It is
// idempotent: logging out with no live session is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	if s.current == nil && s.token == "" {
		s.mu.Unlock()
		return nil
	}
	s.current = nil
	s.token = ""
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Clear()
	}

	if err := s.storage.Delete(sessionKey); err != nil {
		return errors.Wrap(err, "[Store.Logout] delete session")
	}
	return nil
}

// Current returns the live identity, or nil when unauthenticated.
func (s *Store) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer credential for the live session, or "" when there
// is none.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// TokenExpiresWithin reports whether the bearer token carries an exp claim
// falling within the given threshold from now. Tokens without a parseable exp
// claim report false; the remote remains the authority on expiry either way.
func (s *Store) TokenExpiresWithin(threshold time.Duration) bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Time.Before(s.nowTime().Add(threshold))
}
