package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jeroenvervaeke/authorized-client/oauth2client"
)

const (
	// maxUnauthorizedRetries bounds how often a single logical request is
	// re-authenticated and re-sent after a 401 before giving up. Together with
	// the initial attempt this allows four sends in total.
	maxUnauthorizedRetries = 3

	// backoffUnit is multiplied by the retry counter for the linear wait
	// between unauthorized retries. There is no wait before the first retry.
	backoffUnit = 500 * time.Millisecond
)

// RequestFunc builds the outgoing request for one send attempt. It is invoked
// once per attempt, so retries never reuse a consumed body.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// ResponseFunc consumes the body of a 200 response. The body is closed by the
// caller after the function returns.
type ResponseFunc func(*http.Response) error

// AuthorizedClient calls endpoints protected by an OAuth2 client-credentials
// grant. It attaches the current bearer token to every request, refreshes the
// token transparently when it expires or is rejected by the server, and
// retries rejected requests a bounded number of times with linear backoff.
//
// An AuthorizedClient is safe for concurrent use; any number of requests may
// be in flight at once against the shared credential store.
type AuthorizedClient struct {
	store      *oauth2client.CredentialStore
	httpClient *http.Client
	sleep      func(time.Duration)
}

// Connect creates an AuthorizedClient with default settings and immediately
// exchanges the client credentials for a first bearer token. When this fails
// the settings are probably incorrect.
//
// Use NewBuilder for timeouts, TLS, or store options.
func Connect(ctx context.Context, settings oauth2client.Settings) (*AuthorizedClient, error) {
	return NewBuilder().Connect(ctx, settings)
}

// NewAuthorizedClient wires a client from an existing credential store and
// HTTP client. Most callers should use Connect or Builder.Connect instead;
// this constructor exists for sharing one store across several clients.
// If httpClient is nil, a default client with a 30 second timeout is used.
func NewAuthorizedClient(store *oauth2client.CredentialStore, httpClient *http.Client) *AuthorizedClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &AuthorizedClient{
		store:      store,
		httpClient: httpClient,
		sleep:      time.Sleep,
	}
}

// Store exposes the shared credential store, e.g. to reuse it for a gRPC
// connection or a manually composed http.Client with OAuth2Transport.
func (c *AuthorizedClient) Store() *oauth2client.CredentialStore {
	return c.store
}

// GetJSON makes a GET request to the endpoint and decodes the 200 response
// body as JSON into out.
//
// See Do for the authentication and retry behavior shared by all verbs.
func (c *AuthorizedClient) GetJSON(ctx context.Context, url string, out any) error {
	return c.Do(ctx, getRequest(url), decodeJSON(out))
}

// GetText makes a GET request to the endpoint and returns the 200 response
// body as plain text.
func (c *AuthorizedClient) GetText(ctx context.Context, url string) (string, error) {
	var text string
	err := c.Do(ctx, getRequest(url), readText(&text))
	return text, err
}

// PostJSON serializes body as JSON, posts it to the endpoint, and decodes the
// 200 response body as JSON into out.
func (c *AuthorizedClient) PostJSON(ctx context.Context, url string, body, out any) error {
	build, err := postRequest(url, body)
	if err != nil {
		return err
	}
	return c.Do(ctx, build, decodeJSON(out))
}

// PostText serializes body as JSON, posts it to the endpoint, and returns the
// 200 response body as plain text.
func (c *AuthorizedClient) PostText(ctx context.Context, url string, body any) (string, error) {
	build, err := postRequest(url, body)
	if err != nil {
		return "", err
	}
	var text string
	err = c.Do(ctx, build, readText(&text))
	return text, err
}

// Post serializes body as JSON, posts it to the endpoint, and discards the
// 200 response body.
func (c *AuthorizedClient) Post(ctx context.Context, url string, body any) error {
	build, err := postRequest(url, body)
	if err != nil {
		return err
	}
	return c.Do(ctx, build, discardBody)
}

// Do runs one logical request through the retry state machine.
//
// The credentials are validated (and refreshed if expired) before the first
// send. Each attempt builds a fresh request via build, attaches the bearer
// token read from the store at that moment, and executes it. A 200 response
// is handed to handle; a 401 forces a token refresh and a retry, up to
// maxUnauthorizedRetries times with a wait of backoffUnit times the retry
// counter from the second retry on; any other status fails immediately with
// an UnexpectedStatusError. Token fetch failures are fatal and never retried
// here.
func (c *AuthorizedClient) Do(ctx context.Context, build RequestFunc, handle ResponseFunc) error {
	// Never send with a token we already know to be expired.
	if err := c.store.EnsureValid(ctx); err != nil {
		return err
	}

	// Number of times this logical request was rejected with 401.
	retries := 0

	for {
		req, err := build(ctx)
		if err != nil {
			return err
		}

		// Read the token fresh on every attempt: a force refresh may just
		// have replaced it.
		req.Header.Set("Authorization", "Bearer "+c.store.Token())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("httpclient: request failed: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := handle(resp)
			closeBody(resp)
			return err

		case http.StatusUnauthorized:
			closeBody(resp)

			if retries == maxUnauthorizedRetries {
				return fmt.Errorf("%w (retries = %d)", ErrAuthExhausted, maxUnauthorizedRetries)
			}
			retries++

			// From the second retry on, back off linearly so repeated
			// rejections do not hammer the authorization server.
			if retries > 1 {
				c.sleep(time.Duration(retries) * backoffUnit)
			}

			// The server may have invalidated a token we still consider
			// fresh, so refresh unconditionally.
			if err := c.store.ForceRefresh(ctx); err != nil {
				return err
			}

		default:
			closeBody(resp)
			return &UnexpectedStatusError{StatusCode: resp.StatusCode}
		}
	}
}

func getRequest(url string) RequestFunc {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpclient: failed to build request: %w", err)
		}
		return req, nil
	}
}

// postRequest serializes the body once up front; each attempt gets a fresh
// reader over the same bytes.
func postRequest(url string, body any) (RequestFunc, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: failed to serialize body: %w", err)
	}

	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
		if err != nil {
			return nil, fmt.Errorf("httpclient: failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, nil
}

func decodeJSON(out any) ResponseFunc {
	return func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("httpclient: failed to decode response body: %w", err)
		}
		return nil
	}
}

func readText(out *string) ResponseFunc {
	return func(resp *http.Response) error {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("httpclient: failed to read response body: %w", err)
		}
		*out = string(data)
		return nil
	}
}

func discardBody(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("httpclient: failed to drain response body: %w", err)
	}
	return nil
}

// closeBody drains and closes so the underlying connection can be reused.
func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
