package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jeroenvervaeke/authorized-client/oauth2client"
)

// Builder provides a fluent interface for constructing an AuthorizedClient
// with optional TLS/mTLS support, timeouts, and credential store options.
type Builder struct {
	// Credential store configuration
	storeOpts []oauth2client.StoreOption

	// TLS configuration
	tlsEnabled    bool
	tlsCAFile     string
	tlsCertFile   string
	tlsKeyFile    string
	tlsSkipVerify bool

	// HTTP client configuration
	timeout         time.Duration
	baseTransport   http.RoundTripper
	followRedirects bool
}

// NewBuilder creates a new AuthorizedClient builder.
func NewBuilder() *Builder {
	return &Builder{
		timeout:         30 * time.Second, // Default 30s timeout
		followRedirects: true,
	}
}

// WithStoreOptions passes options through to the underlying CredentialStore,
// e.g. oauth2client.WithLoggingEnabled() or oauth2client.WithExpiryLeeway.
func (b *Builder) WithStoreOptions(opts ...oauth2client.StoreOption) *Builder {
	b.storeOpts = append(b.storeOpts, opts...)
	return b
}

// WithTLS enables TLS for both the protected endpoint and the token endpoint.
//
// Parameters:
//   - caFile: Path to CA certificate for server verification (optional, uses system roots if empty)
//   - certFile: Path to client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: Path to client private key for mTLS (optional, must be paired with certFile)
func (b *Builder) WithTLS(caFile, certFile, keyFile string) *Builder {
	b.tlsEnabled = true
	b.tlsCAFile = caFile
	b.tlsCertFile = certFile
	b.tlsKeyFile = keyFile
	return b
}

// WithInsecureSkipVerify disables TLS certificate verification (NOT RECOMMENDED for production).
// This should only be used for testing or development purposes.
func (b *Builder) WithInsecureSkipVerify() *Builder {
	b.tlsSkipVerify = true
	return b
}

// WithTimeout sets the request timeout for the underlying HTTP client.
// Default is 30 seconds if not specified.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithBaseTransport sets a custom base transport.
// This is useful for adding custom middleware or using a custom connection pool.
func (b *Builder) WithBaseTransport(transport http.RoundTripper) *Builder {
	b.baseTransport = transport
	return b
}

// WithoutRedirects disables automatic redirect following.
// By default, the client follows up to 10 redirects.
func (b *Builder) WithoutRedirects() *Builder {
	b.followRedirects = false
	return b
}

// Connect builds the AuthorizedClient and immediately exchanges the client
// credentials for a first bearer token. Token exchanges reuse the same HTTP
// client as the protected endpoint calls, so TLS settings apply to both.
//
// Returns:
//   - *AuthorizedClient: Connected client holding a valid bearer token
//   - error: Invalid settings, TLS configuration failure, or a failed first exchange
func (b *Builder) Connect(ctx context.Context, settings oauth2client.Settings) (*AuthorizedClient, error) {
	httpClient, err := b.buildHTTPClient()
	if err != nil {
		return nil, err
	}

	fetcher, err := oauth2client.NewTokenFetcher(settings, oauth2client.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	store := oauth2client.NewCredentialStore(fetcher, b.storeOpts...)

	// Fetch the bearer token for the first time. Failing fast here surfaces
	// incorrect settings immediately instead of on the first request.
	if err := store.ForceRefresh(ctx); err != nil {
		return nil, err
	}

	return NewAuthorizedClient(store, httpClient), nil
}

// buildHTTPClient constructs the underlying HTTP client with the configured
// transport, TLS, timeout, and redirect options.
func (b *Builder) buildHTTPClient() (*http.Client, error) {
	transport := b.baseTransport
	if transport == nil {
		httpTransport, ok := http.DefaultTransport.(*http.Transport)
		if ok {
			httpTransport = httpTransport.Clone()

			if b.tlsEnabled || b.tlsSkipVerify {
				tlsConfig, err := b.buildTLSConfig()
				if err != nil {
					return nil, fmt.Errorf("httpclient: TLS config failed: %w", err)
				}
				httpTransport.TLSClientConfig = tlsConfig
			} else {
				// Set secure TLS defaults even when TLS is not explicitly configured
				httpTransport.TLSClientConfig = &tls.Config{
					MinVersion: tls.VersionTLS12,
				}
			}

			transport = httpTransport
		} else {
			// Fallback to whatever default transport is configured (e.g., a test stub)
			transport = http.DefaultTransport
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   b.timeout,
	}

	if !b.followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

// buildTLSConfig constructs the TLS configuration for the HTTP client.
func (b *Builder) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: b.tlsSkipVerify, // #nosec G402
	}

	// Load CA certificate for server verification
	if b.tlsCAFile != "" {
		caCert, err := os.ReadFile(b.tlsCAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}

		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA certificate")
		}
		tlsConfig.RootCAs = certPool
	}

	// Load client certificate for mTLS (if both cert and key are provided)
	if b.tlsCertFile != "" && b.tlsKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(b.tlsCertFile, b.tlsKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	} else if b.tlsCertFile != "" || b.tlsKeyFile != "" {
		return nil, errors.New("both TLS cert and key files must be provided for mTLS")
	}

	return tlsConfig, nil
}
