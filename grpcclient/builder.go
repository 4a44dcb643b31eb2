package grpcclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/jeroenvervaeke/authorized-client/oauth2client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// Builder provides a fluent interface for constructing gRPC client connections
// authenticated with OAuth2 client-credentials bearer tokens.
type Builder struct {
	target string

	// OAuth2 configuration. Either an existing store is shared, or a dedicated
	// one is built from settings.
	store     *oauth2client.CredentialStore
	settings  *oauth2client.Settings
	storeOpts []oauth2client.StoreOption

	// TLS configuration
	tlsEnabled    bool
	tlsCAFile     string
	tlsCertFile   string
	tlsKeyFile    string
	tlsServerName string

	// Additional dial options
	dialOpts []grpc.DialOption
}

// NewBuilder creates a new gRPC client builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithTarget sets the server target (e.g., "server.example.com:9090").
func (b *Builder) WithTarget(target string) *Builder {
	b.target = target
	return b
}

// WithCredentialStore shares an existing credential store with this connection,
// e.g. the one behind an httpclient.AuthorizedClient, so HTTP and gRPC calls
// reuse the same cached token.
func (b *Builder) WithCredentialStore(store *oauth2client.CredentialStore) *Builder {
	b.store = store
	return b
}

// WithClientCredentials builds a dedicated credential store for this
// connection from the given settings. Ignored when WithCredentialStore is
// also used.
func (b *Builder) WithClientCredentials(settings oauth2client.Settings, opts ...oauth2client.StoreOption) *Builder {
	b.settings = &settings
	b.storeOpts = append(b.storeOpts, opts...)
	return b
}

// WithTLS enables TLS for the connection.
//
// Parameters:
//   - caFile: Path to CA certificate for server verification (required)
//   - certFile: Path to client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: Path to client private key for mTLS (optional, must be paired with certFile)
//   - serverName: Expected server name for TLS verification (optional, overrides SNI)
func (b *Builder) WithTLS(caFile, certFile, keyFile, serverName string) *Builder {
	b.tlsEnabled = true
	b.tlsCAFile = caFile
	b.tlsCertFile = certFile
	b.tlsKeyFile = keyFile
	b.tlsServerName = serverName
	return b
}

// WithDialOptions adds custom gRPC dial options.
// These options are applied after OAuth2 and TLS options.
func (b *Builder) WithDialOptions(opts ...grpc.DialOption) *Builder {
	b.dialOpts = append(b.dialOpts, opts...)
	return b
}

// Build constructs the gRPC client connection with the configured options.
// When the connection gets a dedicated store via WithClientCredentials, the
// first token is fetched eagerly so incorrect settings fail here.
//
// Returns:
//   - *grpc.ClientConn: Established gRPC connection
//   - error: Error if configuration is invalid or the first token fetch fails
func (b *Builder) Build(ctx context.Context) (*grpc.ClientConn, error) {
	if b.target == "" {
		return nil, errors.New("grpcclient: server target is required")
	}

	var opts []grpc.DialOption

	store := b.store
	if store == nil && b.settings != nil {
		fetcher, err := oauth2client.NewTokenFetcher(*b.settings)
		if err != nil {
			return nil, err
		}
		store = oauth2client.NewCredentialStore(fetcher, b.storeOpts...)

		if err := store.EnsureValid(ctx); err != nil {
			return nil, err
		}
	}

	if store != nil {
		opts = append(opts,
			grpc.WithUnaryInterceptor(store.UnaryClientInterceptor()),
			grpc.WithStreamInterceptor(store.StreamClientInterceptor()),
		)
	}

	// Add TLS credentials if enabled
	if b.tlsEnabled {
		tlsConfig, err := b.buildTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("grpcclient: TLS config failed: %w", err)
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		// Default to TLS with system roots to avoid accidental plaintext connections.
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS12,
		})))
	}

	opts = append(opts, b.dialOpts...)

	conn, err := grpc.NewClient(b.target, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcclient: dial failed: %w", err)
	}

	return conn, nil
}

// buildTLSConfig constructs the TLS configuration for the gRPC connection.
func (b *Builder) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
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

	if b.tlsServerName != "" {
		tlsConfig.ServerName = b.tlsServerName
	}

	return tlsConfig, nil
}
