package oauth2client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jeroenvervaeke/authorized-client/internal/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestCredentialStore_UnaryClientInterceptor(t *testing.T) {
	server := testutil.NewMockOAuth2Server(t, testutil.TokenResponse("interceptor-token", 3600))
	defer server.Close()

	store := newTestStore(t, server)
	interceptor := store.UnaryClientInterceptor()

	var capturedCtx context.Context
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		capturedCtx = ctx
		return nil
	}

	err := interceptor(context.Background(), "/test.Service/Method", nil, nil, nil, invoker)
	if err != nil {
		t.Fatalf("interceptor failed: %v", err)
	}

	md, ok := metadata.FromOutgoingContext(capturedCtx)
	if !ok {
		t.Fatal("expected outgoing metadata to be set")
	}

	auth := md.Get("authorization")
	if len(auth) != 1 || auth[0] != "Bearer interceptor-token" {
		t.Errorf("expected 'Bearer interceptor-token', got %v", auth)
	}
}

func TestCredentialStore_StreamClientInterceptor(t *testing.T) {
	server := testutil.NewMockOAuth2Server(t, testutil.TokenResponse("interceptor-token", 3600))
	defer server.Close()

	store := newTestStore(t, server)
	interceptor := store.StreamClientInterceptor()

	var capturedCtx context.Context
	streamer := func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		capturedCtx = ctx
		return nil, nil
	}

	_, err := interceptor(context.Background(), &grpc.StreamDesc{}, nil, "/test.Service/Stream", streamer)
	if err != nil {
		t.Fatalf("interceptor failed: %v", err)
	}

	md, ok := metadata.FromOutgoingContext(capturedCtx)
	if !ok {
		t.Fatal("expected outgoing metadata to be set")
	}

	auth := md.Get("authorization")
	if len(auth) != 1 || auth[0] != "Bearer interceptor-token" {
		t.Errorf("expected 'Bearer interceptor-token', got %v", auth)
	}
}

func TestCredentialStore_Interceptor_TokenFetchError(t *testing.T) {
	server := testutil.NewMockOAuth2Server(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("token fetch failed")
	})
	defer server.Close()

	store := newTestStore(t, server)

	invoked := false
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		invoked = true
		return nil
	}

	err := store.UnaryClientInterceptor()(context.Background(), "/test.Service/Method", nil, nil, nil, invoker)
	if err == nil {
		t.Fatal("expected error when token fetch fails, got nil")
	}
	if !strings.Contains(err.Error(), "failed to get token") {
		t.Errorf("unexpected error: %v", err)
	}
	if invoked {
		t.Error("invoker must not run when the token fetch fails")
	}
}
