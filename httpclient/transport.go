package httpclient

import (
	"fmt"
	"net/http"

	"github.com/jeroenvervaeke/authorized-client/oauth2client"
)

// OAuth2Transport is an http.RoundTripper that automatically adds OAuth2
// Bearer tokens from a CredentialStore to outgoing HTTP requests.
//
// It wraps an existing transport (typically http.DefaultTransport) and
// injects the Authorization header before each request. Unlike
// AuthorizedClient it performs no 401 retries; use it when composing a plain
// http.Client, e.g. for streaming downloads.
type OAuth2Transport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Store provides the OAuth2 access tokens.
	Store *oauth2client.CredentialStore
}

// RoundTrip implements the http.RoundTripper interface.
// It ensures the store holds a valid token, clones the request, and adds it as
// "Authorization: Bearer <token>" before delegating to the base transport.
// The token refresh respects the request context's cancellation and deadline.
func (t *OAuth2Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Store == nil {
		return nil, fmt.Errorf("httpclient: Store is nil")
	}

	if err := t.Store.EnsureValid(req.Context()); err != nil {
		return nil, fmt.Errorf("httpclient: failed to get token: %w", err)
	}

	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())
	reqClone.Header.Set("Authorization", "Bearer "+t.Store.Token())

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(reqClone)
}

// NewOAuth2Transport creates a new OAuth2Transport backed by the given store.
// The base transport defaults to http.DefaultTransport if not specified.
func NewOAuth2Transport(store *oauth2client.CredentialStore, base http.RoundTripper) *OAuth2Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &OAuth2Transport{
		Base:  base,
		Store: store,
	}
}
