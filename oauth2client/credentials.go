package oauth2client

import "time"

// Credentials pairs an opaque bearer token with its absolute expiry instant.
// The CredentialStore replaces the record wholesale on every refresh; a value
// handed out is a snapshot and is never mutated afterwards.
type Credentials struct {
	// AccessToken is the opaque bearer token.
	AccessToken string

	// ExpiresAt is the instant after which the token must be treated as invalid.
	ExpiresAt time.Time
}

// validAt reports whether the token is still usable at the given instant,
// keeping a safety window of leeway before the actual expiry.
func (c Credentials) validAt(now time.Time, leeway time.Duration) bool {
	if c.AccessToken == "" {
		return false
	}
	return c.ExpiresAt.Add(-leeway).After(now)
}
