package eventhub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHub creates a miniredis instance and a RedisHub connected to it.
func setupTestHub(t *testing.T, opts RedisOptions) (*RedisHub, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		MaxRetries:  -1,
		DialTimeout: 500 * time.Millisecond,
	})
	hub := NewRedisHub(client, opts)

	t.Cleanup(func() {
		_ = hub.Close()
	})

	return hub, mr
}

func TestRedisHub_PublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub, _ := setupTestHub(t, RedisOptions{})

	events, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	sent := NewEvent("Reset Complete", TypeEdgeIdentity, SourceResetComplete, nil)
	require.NoError(t, hub.Dispatch(ctx, sent))

	got := receive(t, events)
	assert.Equal(t, sent.ID, got.ID)

	require.NoError(t, hub.PublishXDMSharedState(ctx, "owner", map[string]any{}))
	got = receive(t, events)
	assert.True(t, got.Is(TypeHub, SourceSharedState))
}

func TestRedisHub_CustomChannel(t *testing.T) {
	ctx := context.Background()
	hub, mr := setupTestHub(t, RedisOptions{Channel: "identity"})

	events, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, mr.PubSubNumSub("identity")["identity"])

	require.NoError(t, hub.Dispatch(ctx, NewEvent("x", TypeHub, SourceSharedState, nil)))
	receive(t, events)
}

func TestRedisHub_CircuitBreaker(t *testing.T) {
	ctx := context.Background()
	hub, mr := setupTestHub(t, RedisOptions{FailureThreshold: 2, OpenTimeout: time.Minute})
	mr.Close()

	e := NewEvent("x", TypeHub, SourceSharedState, nil)
	assert.Error(t, hub.Dispatch(ctx, e))
	assert.Error(t, hub.Dispatch(ctx, e))
	assert.Equal(t, gobreaker.StateOpen.String(), hub.BreakerState())

	err := hub.Dispatch(ctx, e)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestRedisHub_Closed(t *testing.T) {
	ctx := context.Background()
	hub, _ := setupTestHub(t, RedisOptions{})
	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())

	assert.ErrorIs(t, hub.Dispatch(ctx, Event{}), ErrClosed)
	_, err := hub.Subscribe(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}
