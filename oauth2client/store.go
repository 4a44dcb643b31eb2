package oauth2client

import (
	"context"
	"log"
	"sync"
	"time"
)

// Logger is an interface for optional logging in CredentialStore.
// Implementations can log token refresh events if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// CredentialStore owns the single shared Credentials record for a client
// instance. It serializes all reads and writes, refreshes the record when it
// expires, and prevents redundant concurrent refreshes with double-checked
// locking. A CredentialStore is safe for concurrent use.
type CredentialStore struct {
	fetcher *TokenFetcher

	mu    sync.RWMutex
	creds Credentials

	leeway time.Duration
	logger Logger
	now    func() time.Time
}

// StoreOption is a functional option for configuring CredentialStore.
type StoreOption func(*CredentialStore)

// WithLogger sets a custom logger for token refresh events.
// If not set, no logging will occur.
func WithLogger(logger Logger) StoreOption {
	return func(s *CredentialStore) {
		s.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
// This is a convenience option that sets the logger to log.Default().
func WithLoggingEnabled() StoreOption {
	return func(s *CredentialStore) {
		s.logger = log.Default()
	}
}

// WithExpiryLeeway makes the store treat tokens as expired the given duration
// before their actual expiry, avoiding near-expiry races against the server.
// The default is zero: a token is refreshed only once its expiry has passed.
func WithExpiryLeeway(leeway time.Duration) StoreOption {
	return func(s *CredentialStore) {
		s.leeway = leeway
	}
}

// NewCredentialStore creates a store backed by the given fetcher.
// The store starts empty; the first EnsureValid or ForceRefresh performs the
// initial exchange.
func NewCredentialStore(fetcher *TokenFetcher, opts ...StoreOption) *CredentialStore {
	s := &CredentialStore{
		fetcher: fetcher,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Token returns the current access token. The read is a consistent snapshot:
// it observes either the record from before a concurrent refresh or the one
// after it, never a half-updated pair.
func (s *CredentialStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.AccessToken
}

// Snapshot returns a copy of the current credentials record.
func (s *CredentialStore) Snapshot() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// EnsureValid refreshes the credentials if they are expired, and is a no-op
// otherwise.
//
// The check is double-checked: expiry is first read under the shared lock so
// concurrent readers are not blocked, and re-checked under the write lock
// before fetching. When several callers observe an expired token at once,
// whichever wins the write lock performs the single exchange; the others find
// a now-valid record and skip the fetch.
func (s *CredentialStore) EnsureValid(ctx context.Context) error {
	s.mu.RLock()
	valid := s.creds.validAt(s.now(), s.leeway)
	s.mu.RUnlock()
	if valid {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited for the write lock.
	if s.creds.validAt(s.now(), s.leeway) {
		return nil
	}

	return s.refreshLocked(ctx)
}

// ForceRefresh unconditionally fetches new credentials, even if the cached
// record has not expired. Use it when the server rejected the current token:
// a 401 is authoritative, so the expiry is deliberately not re-checked.
func (s *CredentialStore) ForceRefresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// refreshLocked fetches new credentials and swaps the record in one step.
// The caller must hold the write lock, which is held only for this
// fetch-and-swap, never across an entire request.
func (s *CredentialStore) refreshLocked(ctx context.Context) error {
	creds, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	s.creds = creds

	if s.logger != nil {
		s.logger.Printf("oauth2: obtained new access token (expires: %s)", creds.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}
