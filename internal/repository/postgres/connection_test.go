package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_InvalidDSN(t *testing.T) {
	_, err := NewConnection(context.Background(), "://not a dsn", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse postgres dsn")
}

func TestNewConnection_AppliesMaxConns(t *testing.T) {
	conn, err := NewConnection(context.Background(), "postgres://u:p@127.0.0.1:1/db?sslmode=disable", 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	assert.Equal(t, int32(10), conn.Config().MaxConns)
}

func TestConnection_WaitReady_Unreachable(t *testing.T) {
	conn, err := NewConnection(context.Background(), "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = conn.WaitReady(ctx, 2, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is not reachable")
}

func TestConnection_NilPool(t *testing.T) {
	conn := &Connection{}
	assert.Error(t, conn.Ping(context.Background()))
	assert.NoError(t, conn.Close())
}
