package grpcclient_test

import (
	"context"
	"fmt"
	"log"

	"github.com/jeroenvervaeke/authorized-client/grpcclient"
	"github.com/jeroenvervaeke/authorized-client/oauth2client"
)

// ExampleNewBuilder demonstrates building a connection that shares a credential
// store, e.g. with an httpclient.AuthorizedClient talking to the same backend.
func ExampleNewBuilder() {
	fetcher, err := oauth2client.NewTokenFetcher(oauth2client.Settings{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     "https://auth.example.com/oauth/v2/token",
		Scopes:       []string{"openid", "profile"},
	})
	if err != nil {
		log.Fatal(err)
	}

	store := oauth2client.NewCredentialStore(fetcher)

	conn, err := grpcclient.NewBuilder().
		WithTarget("server.example.com:9090").
		WithCredentialStore(store).
		Build(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	fmt.Println("gRPC connection configured with OAuth2 authentication")
	// Output: gRPC connection configured with OAuth2 authentication
}
