package oauth2client

import "errors"

var (
	// ErrInvalidTokenURL is returned by Settings.Validate and NewTokenFetcher
	// when the configured token endpoint is not a valid absolute URL.
	ErrInvalidTokenURL = errors.New("oauth2: token URL is not a valid absolute URL")

	// ErrMissingExpiry is returned when the token response carries no expires_in.
	// Without a server-declared lifetime the expiry-driven refresh logic cannot work.
	ErrMissingExpiry = errors.New("oauth2: expires_in is missing in token response")

	// ErrExpiryOverflow is returned when adding the declared token lifetime to the
	// current instant overflows the time representation.
	ErrExpiryOverflow = errors.New("oauth2: token lifetime overflows the expiry instant")
)
