package messaging

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func setupFakeServer(t *testing.T) []option.ClientOption {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return []option.ClientOption{option.WithGRPCConn(conn)}
}

func TestNewClient_RequiresProject(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	_, err := NewClient(context.Background(), Config{})
	assert.ErrorContains(t, err, "project id not set")
}

func TestSubscription_CreatesMissing(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, Config{ProjectID: "p"}, setupFakeServer(t)...)
	require.NoError(t, err)
	defer client.Close()

	cfg := Config{Topic: "webhooks", Subscription: "ledger", CreateSubscription: true, MaxOutstanding: 4}
	sub, err := Subscription(ctx, client, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, sub.ReceiveSettings.MaxOutstandingMessages)

	exists, err := client.Subscription("ledger").Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	// Second call finds both
	_, err = Subscription(ctx, client, cfg)
	assert.NoError(t, err)
}

func TestSubscription_RequiresName(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, Config{ProjectID: "p"}, setupFakeServer(t)...)
	require.NoError(t, err)
	defer client.Close()

	_, err = Subscription(ctx, client, Config{})
	assert.ErrorContains(t, err, "subscription name is required")
}
