package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func runHub(t *testing.T) (*Hub, func()) {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	return hub, func() {
		cancel()
		<-done
	}
}

func connect(hub *Hub, userID string, buffer int) *Client {
	c := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
	hub.add(c)
	return c
}

func receive(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var f Frame
		require.NoError(t, json.Unmarshal(data, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return Frame{}
	}
}

func TestHubDeliversToEveryDeviceOfUser(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := runHub(t)
	defer stop()

	laptop := connect(hub, "u-1", 4)
	phone := connect(hub, "u-1", 4)
	other := connect(hub, "u-2", 4)
	require.Eventually(t, func() bool { return hub.ClientCount("u-1") == 2 }, time.Second, 5*time.Millisecond)

	hub.Send("u-1", Frame{Type: "ping", Key: "k"})

	assert.Equal(t, "ping", receive(t, laptop).Type)
	assert.Equal(t, "ping", receive(t, phone).Type)
	assert.Empty(t, other.Send)
}

func TestHubForwardsBrokerChanges(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := runHub(t)
	defer stop()

	broker := memory.NewBroker()
	detach := hub.Attach(broker)
	defer detach()

	c := connect(hub, "u-1", 4)
	require.Eventually(t, func() bool { return hub.ClientCount("u-1") == 1 }, time.Second, 5*time.Millisecond)

	broker.Notify("u-1", store.Notification{Title: "Pro License Required"})
	// Changes without an owner never reach a socket.
	broker.Publish(store.Change{Kind: store.ChangeStreamUpdated, Key: "chat:x"})

	f := receive(t, c)
	assert.Equal(t, store.ChangeNotification, f.Type)
	assert.Equal(t, "u-1", f.Key)
	assert.Empty(t, c.Send)
}

func TestHubDropsSlowClient(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := runHub(t)
	defer stop()

	slow := connect(hub, "u-1", 1)
	require.Eventually(t, func() bool { return hub.ClientCount("u-1") == 1 }, time.Second, 5*time.Millisecond)

	hub.Send("u-1", Frame{Type: "a"})
	hub.Send("u-1", Frame{Type: "b"})

	require.Eventually(t, func() bool { return hub.ClientCount("u-1") == 0 }, time.Second, 5*time.Millisecond)
	<-slow.Send
	_, ok := <-slow.Send
	assert.False(t, ok)
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := runHub(t)

	c := connect(hub, "u-1", 1)
	require.Eventually(t, func() bool { return hub.ClientCount("u-1") == 1 }, time.Second, 5*time.Millisecond)
	stop()

	_, ok := <-c.Send
	assert.False(t, ok)
}
