// Package oauth2client manages OAuth2 client-credentials bearer tokens for HTTP and gRPC clients.
//
// A TokenFetcher performs the client-credentials exchange against the authorization server and
// computes an absolute expiry instant from the server-declared lifetime. A CredentialStore owns
// the single shared credentials record, refreshes it with double-checked locking when it expires,
// and supports an unconditional force refresh for tokens the server has invalidated early.
// Token fetches honor contexts, are thread-safe, and can log refresh events via an optional
// Logger interface.
//
// # Features
//
//   - Client-credentials flow with automatic caching and expiry-driven refresh
//   - Double-checked locking so concurrent callers trigger at most one exchange
//   - ForceRefresh for server-side token invalidation (e.g. after a 401)
//   - gRPC unary and stream client interceptors that inject Bearer tokens
//   - Optional logging (WithLogger, WithLoggingEnabled) and early-refresh leeway
//
// # Quick Start
//
//	fetcher, err := oauth2client.NewTokenFetcher(oauth2client.Settings{
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    TokenURL:     "https://auth.example.com/oauth/v2/token",
//	    Scopes:       []string{"openid", "profile"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := oauth2client.NewCredentialStore(fetcher, oauth2client.WithLoggingEnabled())
//	if err := store.EnsureValid(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	conn, err := grpc.NewClient(
//	    "server:9090",
//	    grpc.WithUnaryInterceptor(store.UnaryClientInterceptor()),
//	    grpc.WithStreamInterceptor(store.StreamClientInterceptor()),
//	)
//
// # Notes
//
//   - The store never holds its write lock across a caller's request, only for one fetch-and-swap.
//   - A token response without expires_in fails with ErrMissingExpiry; the refresh decision
//     requires an explicit server-declared lifetime.
package oauth2client
