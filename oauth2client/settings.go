package oauth2client

import (
	"errors"
	"fmt"
	"net/url"
)

// Settings holds the immutable connection parameters for the client-credentials flow.
// The JSON tags allow decoding Settings straight from a configuration file; the
// struct is read-only after construction and safe to share by reference.
type Settings struct {
	// ClientID is the OAuth2 client identifier.
	ClientID string `json:"client_id"`

	// ClientSecret is the OAuth2 client secret.
	ClientSecret string `json:"client_secret"`

	// TokenURL is the token endpoint of the authorization server.
	TokenURL string `json:"token_url"`

	// Scopes lists the requested permission scopes. Order is preserved on the
	// wire but carries no meaning.
	Scopes []string `json:"scopes"`
}

// Validate reports whether the settings can be used for a token exchange.
// A malformed token URL is rejected here, at construction time, rather than on
// the first exchange.
func (s Settings) Validate() error {
	if s.ClientID == "" {
		return errors.New("oauth2: client ID is required")
	}
	if s.ClientSecret == "" {
		return errors.New("oauth2: client secret is required")
	}

	u, err := url.Parse(s.TokenURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTokenURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidTokenURL, s.TokenURL)
	}

	return nil
}
