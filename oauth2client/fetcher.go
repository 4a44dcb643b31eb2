package oauth2client

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// maxTTLSeconds is the largest lifetime representable as a time.Duration,
// which counts nanoseconds in an int64.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

// TokenFetcher performs client-credentials exchanges against the token endpoint.
// It is stateless: every Fetch issues exactly one exchange and computes a fresh
// Credentials value. A TokenFetcher is safe for concurrent use.
type TokenFetcher struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	now        func() time.Time
}

// FetcherOption is a functional option for configuring TokenFetcher.
type FetcherOption func(*TokenFetcher)

// WithHTTPClient routes token exchanges through the provided HTTP client
// instead of http.DefaultClient. Use this to apply custom TLS settings or
// timeouts to the exchange itself.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *TokenFetcher) {
		f.httpClient = client
	}
}

// NewTokenFetcher creates a fetcher for the given settings.
// The settings are validated eagerly so a malformed token URL surfaces here
// rather than on the first exchange.
func NewTokenFetcher(settings Settings, opts ...FetcherOption) (*TokenFetcher, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	f := &TokenFetcher{
		config: &clientcredentials.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			TokenURL:     settings.TokenURL,
			Scopes:       slices.Clone(settings.Scopes),
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Fetch exchanges the configured client credentials for a fresh bearer token.
//
// The returned Credentials carry an absolute expiry computed from the
// server-declared expires_in. A response without expires_in fails with
// ErrMissingExpiry; a lifetime long enough to overflow the expiry instant
// fails with ErrExpiryOverflow. Transport and protocol failures are wrapped
// and returned as-is, never retried here.
func (f *TokenFetcher) Fetch(ctx context.Context) (Credentials, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}

	token, err := f.config.Token(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("oauth2: token exchange failed: %w", err)
	}

	return credentialsFromToken(token, f.now())
}

// credentialsFromToken computes the absolute expiry from the token's declared
// lifetime. No default lifetime is assumed: guessing one could either refresh
// a healthy token too early or keep serving an already-invalid one.
func credentialsFromToken(token *oauth2.Token, now time.Time) (Credentials, error) {
	ttl, ok := tokenTTL(token)
	if !ok || ttl < 1 {
		return Credentials{}, ErrMissingExpiry
	}

	// Bound the raw seconds before multiplying: the product wraps modulo 2^64
	// and a wrapped value can land on a positive but wrong duration.
	if ttl > float64(maxTTLSeconds) {
		return Credentials{}, ErrExpiryOverflow
	}

	expiresAt := now.Add(time.Duration(int64(ttl)) * time.Second)
	if !expiresAt.After(now) {
		return Credentials{}, ErrExpiryOverflow
	}

	return Credentials{
		AccessToken: token.AccessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

// tokenTTL extracts the server-declared expires_in from the token response.
// clientcredentials exposes the raw lifetime only through the response extras:
// a float64 for JSON responses, a string for form-encoded ones.
func tokenTTL(token *oauth2.Token) (float64, bool) {
	switch v := token.Extra("expires_in").(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}
