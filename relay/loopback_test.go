package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/wcpairing/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Relay = (*Loopback)(nil)
	_ core.Relay = (*WebSocketRelay)(nil)
)

func TestLoopback_RecordsCalls(t *testing.T) {
	l := NewLoopback(func(o *LoopbackOptions) {
		o.Peer = &core.AppMetadata{Name: "wallet"}
	})
	defer l.Close()
	ctx := context.Background()

	require.NoError(t, l.Subscribe(ctx, "t1"))
	assert.True(t, l.Subscribed("t1"))

	md, err := l.Activate(ctx, core.Proposal{Topic: "t1"})
	require.NoError(t, err)
	assert.Equal(t, "wallet", md.Name)

	require.NoError(t, l.Ping(ctx, "t1"))
	assert.Equal(t, []string{"t1"}, l.Pings())

	require.NoError(t, l.Delete(ctx, "t1", core.UserDisconnected))
	require.NoError(t, l.Unsubscribe(ctx, "t1"))
	assert.Equal(t, []string{"t1"}, l.Deleted())
	assert.False(t, l.Subscribed("t1"))

	var rpcErr *RPCError
	assert.True(t, errors.As(l.Ping(ctx, "t1"), &rpcErr))
}

func TestLoopback_OnActivateHonoursContext(t *testing.T) {
	l := NewLoopback(func(o *LoopbackOptions) {
		o.OnActivate = func(ctx context.Context, _ core.Proposal) error {
			<-ctx.Done()
			return ctx.Err()
		}
	})
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Activate(ctx, core.Proposal{Topic: "t1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoopback_InjectRemoteDelete(t *testing.T) {
	l := NewLoopback()

	require.True(t, l.InjectRemoteDelete("t1", 6000, "bye"))

	select {
	case d := <-l.Deletions():
		assert.Equal(t, core.RemoteDeletion{Topic: "t1", Code: 6000, Message: "bye"}, d)
	case <-time.After(time.Second):
		t.Fatal("deletion not delivered")
	}

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.False(t, l.InjectRemoteDelete("t1", 1, "late"))

	_, ok := <-l.Deletions()
	assert.False(t, ok)
	assert.ErrorIs(t, l.Subscribe(context.Background(), "t2"), ErrRelayClosed)
}

func TestLoopback_FullDeletionBufferDoesNotBlockRelay(t *testing.T) {
	l := NewLoopback(func(o *LoopbackOptions) { o.DeletionBuffer = 1 })
	ctx := context.Background()

	require.True(t, l.InjectRemoteDelete("t1", 6000, "bye"))

	injected := make(chan bool, 1)
	go func() { injected <- l.InjectRemoteDelete("t2", 6000, "bye") }()

	// Nobody drains Deletions, yet the relay stays usable.
	require.NoError(t, l.Subscribe(ctx, "t3"))
	assert.True(t, l.Subscribed("t3"))

	require.NoError(t, l.Close())

	select {
	case ok := <-injected:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("blocked injection was not released by Close")
	}

	d, ok := <-l.Deletions()
	require.True(t, ok)
	assert.Equal(t, "t1", d.Topic)
	_, ok = <-l.Deletions()
	assert.False(t, ok)
}
