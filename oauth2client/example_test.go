package oauth2client_test

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/jeroenvervaeke/authorized-client/oauth2client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024

var (
	bufListener = bufconn.Listen(bufSize)
	bufServer   = grpc.NewServer()
	bufOnce     sync.Once
)

func startBufServer() {
	bufOnce.Do(func() {
		go func() {
			_ = bufServer.Serve(bufListener)
		}()
	})
}

func dialBufConn(opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	startBufServer()

	dialOpts := []grpc.DialOption{
		grpc.WithContextDialer(func(c context.Context, _ string) (net.Conn, error) {
			select {
			case <-c.Done():
				return nil, c.Err()
			default:
			}
			return bufListener.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}

	dialOpts = append(dialOpts, opts...)
	return grpc.NewClient("bufnet", dialOpts...)
}

func exampleSettings() oauth2client.Settings {
	return oauth2client.Settings{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     "https://auth.example.com/oauth/v2/token",
		Scopes:       []string{"openid", "profile"},
	}
}

// Example demonstrates sharing one credential store between gRPC interceptors.
func Example() {
	fetcher, err := oauth2client.NewTokenFetcher(exampleSettings())
	if err != nil {
		log.Fatal(err)
	}

	store := oauth2client.NewCredentialStore(fetcher)

	conn, err := dialBufConn(
		grpc.WithUnaryInterceptor(store.UnaryClientInterceptor()),
		grpc.WithStreamInterceptor(store.StreamClientInterceptor()),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	fmt.Println("gRPC client configured with OAuth2 authentication")
	// Output: gRPC client configured with OAuth2 authentication
}

// ExampleNewTokenFetcher demonstrates creating a fetcher and validating settings.
func ExampleNewTokenFetcher() {
	_, err := oauth2client.NewTokenFetcher(oauth2client.Settings{
		ClientID:     "my-client-id",
		ClientSecret: "my-client-secret",
		TokenURL:     "not a url",
	})
	if err != nil {
		fmt.Println("settings rejected at construction time")
	}

	// Output: settings rejected at construction time
}

// ExampleCredentialStore_EnsureValid demonstrates the refresh-on-demand pattern.
func ExampleCredentialStore_EnsureValid() {
	fetcher, err := oauth2client.NewTokenFetcher(exampleSettings())
	if err != nil {
		log.Fatal(err)
	}

	store := oauth2client.NewCredentialStore(fetcher, oauth2client.WithLoggingEnabled())

	// This would normally fetch a real token from the authorization server.
	if err := store.EnsureValid(context.Background()); err != nil {
		fmt.Println("token fetch attempted")
	}

	// Output: token fetch attempted
}
