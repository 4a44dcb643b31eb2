// Package grpcclient provides a fluent builder for secure gRPC client connections
// that authenticate with OAuth2 client-credentials bearer tokens.
//
// It defaults to TLS 1.2+ using system roots to avoid accidental plaintext
// connections. A connection can share the credential store of an existing
// httpclient.AuthorizedClient or build a dedicated one from Settings.
//
// # Quick Start
//
//	conn, err := grpcclient.NewBuilder().
//	    WithTarget("server.example.com:9090").
//	    WithClientCredentials(oauth2client.Settings{
//	        ClientID:     "client-id",
//	        ClientSecret: "client-secret",
//	        TokenURL:     "https://auth.example.com/oauth/v2/token",
//	        Scopes:       []string{"openid", "profile"},
//	    }).
//	    WithTLS("/path/to/ca.crt", "", "", "server.example.com").
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	client := pb.NewYourServiceClient(conn)
//
// # TLS Behavior
//
// TLS is enabled by default with system CAs and TLS 1.2 minimum. WithTLS allows
// supplying a custom root CA and optional client cert/key for mTLS; both cert
// and key must be provided together.
package grpcclient
