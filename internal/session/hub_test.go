package session

import (
	"context"
	"encoding/json"
	"testing"

	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	default:
		t.Fatal("no message queued")
		return Message{}
	}
}

func TestHub_BroadcastState(t *testing.T) {
	hub := NewHub(logger.NewTestLogger(t))
	a := NewClient("s1")
	b := NewClient("s1")
	other := NewClient("s2")
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	assert.Equal(t, 2, hub.BroadcastState("s1", models.InFlightState("sub-1")))

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, MessageTypeState, msg.Type)
		require.NotNil(t, msg.State)
		assert.True(t, msg.State.ShowDistraction)
	}
	assert.Empty(t, other.Send)
}

func TestHub_UnregisterClosesOnce(t *testing.T) {
	hub := NewHub(logger.NewTestLogger(t))
	c := NewClient("s1")
	hub.Register(c)
	assert.Equal(t, 1, hub.Connections("s1"))

	hub.Unregister(c)
	hub.Unregister(c)
	assert.Equal(t, 0, hub.Connections("s1"))

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(logger.NewTestLogger(t))
	c := NewClient("s1")
	hub.Register(c)

	for i := 0; i < sendBuffer; i++ {
		hub.Broadcast("s1", Message{Type: MessageTypePong})
	}
	assert.Equal(t, 0, hub.Broadcast("s1", Message{Type: MessageTypePong}))
	assert.Equal(t, 0, hub.Connections("s1"))

	hub.Unregister(c)
}

func TestHubOpener(t *testing.T) {
	hub := NewHub(logger.NewTestLogger(t))
	opener := hub.Opener("s1")

	assert.Error(t, opener.Open(context.Background(), "https://example.com/a"), "no connection to deliver to")

	c := NewClient("s1")
	hub.Register(c)

	require.NoError(t, opener.Open(context.Background(), "https://example.com/a"))
	msg := receive(t, c)
	assert.Equal(t, MessageTypeOpen, msg.Type)
	assert.Equal(t, "https://example.com/a", msg.Link)

	assert.Error(t, opener.Open(context.Background(), "javascript:alert(1)"))
	assert.Empty(t, c.Send)
}
