package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jeroenvervaeke/authorized-client/internal/testutil"
	"github.com/jeroenvervaeke/authorized-client/oauth2client"
)

func newTransportStore(t *testing.T, handler testutil.RoundTripFunc) *oauth2client.CredentialStore {
	t.Helper()

	server := testutil.NewMockOAuth2Server(t, handler)
	t.Cleanup(server.Close)

	fetcher, err := oauth2client.NewTokenFetcher(oauth2client.Settings{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		TokenURL:     server.URL + "/token",
		Scopes:       []string{"read"},
	}, oauth2client.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewTokenFetcher failed: %v", err)
	}

	return oauth2client.NewCredentialStore(fetcher)
}

func TestOAuth2Transport_RoundTrip(t *testing.T) {
	store := newTransportStore(t, testutil.TokenResponse("transport-token", 3600))

	var captured *http.Request
	base := testutil.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("ok")),
			Request:    req,
		}, nil
	})

	transport := NewOAuth2Transport(store, base)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://api.example.com/data", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip failed: %v", err)
	}
	defer resp.Body.Close()

	if captured == nil {
		t.Fatal("base transport was not called")
	}
	if auth := captured.Header.Get("Authorization"); auth != "Bearer transport-token" {
		t.Errorf("expected 'Bearer transport-token', got %q", auth)
	}

	// The original request must not be mutated.
	if auth := req.Header.Get("Authorization"); auth != "" {
		t.Errorf("original request was mutated: %q", auth)
	}
}

func TestOAuth2Transport_NilStore(t *testing.T) {
	transport := &OAuth2Transport{}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://api.example.com/data", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	_, err = transport.RoundTrip(req)
	if err == nil {
		t.Fatal("expected error for nil store, got nil")
	}
	if !strings.Contains(err.Error(), "Store is nil") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOAuth2Transport_TokenFetchError(t *testing.T) {
	store := newTransportStore(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("token fetch failed")
	})

	base := testutil.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		t.Error("base transport must not be called when the token fetch fails")
		return nil, nil
	})

	transport := NewOAuth2Transport(store, base)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://api.example.com/data", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	_, err = transport.RoundTrip(req)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to get token") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewOAuth2Transport_DefaultBase(t *testing.T) {
	store := newTransportStore(t, nil)

	transport := NewOAuth2Transport(store, nil)
	if transport.Base != http.DefaultTransport {
		t.Error("expected base to default to http.DefaultTransport")
	}
	if transport.Store != store {
		t.Error("expected store to be set")
	}
}
