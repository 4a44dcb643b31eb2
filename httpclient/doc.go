// Package httpclient makes it easy to call REST endpoints protected by OAuth2
// client-credentials authorization.
//
// AuthorizedClient hides token acquisition, expiry tracking, and transparent
// re-authentication behind a small request API. Every request carries the
// current Bearer token; a 401 triggers a forced token refresh and a bounded
// retry with linear backoff (three retries, four sends total), while any other
// non-200 status fails immediately.
//
// # Features
//
//   - GET/POST variants for JSON, plain text, and discarded bodies
//   - Transparent token refresh on expiry and on 401 rejection
//   - Bounded retry with linear backoff between re-authentication attempts
//   - Fluent Builder with TLS/mTLS, timeouts, redirects, and store options
//   - Reusable OAuth2Transport for manually composed http.Clients
//
// # Quick Start
//
//	client, err := httpclient.Connect(ctx, oauth2client.Settings{
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    TokenURL:     "https://auth.example.com/oauth/v2/token",
//	    Scopes:       []string{"profile", "email"},
//	})
//	if err != nil {
//	    log.Fatal(err) // settings are probably wrong
//	}
//
//	var info Info
//	if err := client.GetJSON(ctx, "https://protected-endpoint.com/info", &info); err != nil {
//	    log.Fatal(err)
//	}
//
// # Manual Transport Wrapping
//
//	transport := httpclient.NewOAuth2Transport(client.Store(), nil)
//	raw := &http.Client{Transport: transport}
//
// All components are safe for concurrent use; concurrent requests share one
// credential store and at most one token exchange runs at a time.
package httpclient
