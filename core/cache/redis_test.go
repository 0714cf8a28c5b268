package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	rdb, err := New(context.Background(), Config{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestNew_Unreachable(t *testing.T) {
	rdb, err := New(context.Background(), Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}

func TestNew_Connects(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb, err := New(context.Background(), Config{Addr: addr})
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Ping(context.Background()).Err())
}
