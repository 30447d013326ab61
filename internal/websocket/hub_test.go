package websocket

import (
	"context"
	"testing"
	"time"

	"mealbox-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func join(t *testing.T, h *Hub, audience string, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: h, UserID: "u-" + audience, Audience: audience, Send: make(chan []byte, buffer)}
	before := h.ConnectionCount(audience)
	h.register <- c
	require.Eventually(t, func() bool { return h.ConnectionCount(audience) == before+1 }, time.Second, 5*time.Millisecond)
	return c
}

func TestHub_DeliverRespectsAudience(t *testing.T) {
	h := startHub(t)
	admin := join(t, h, "admin", 4)
	kitchen := join(t, h, "kitchen", 4)
	rider := join(t, h, "rider", 4)

	h.Deliver([]string{"admin", "kitchen"}, []byte(`{"type":"ORDERS_CONFIRMED"}`))

	assert.Len(t, admin.Send, 1)
	assert.Len(t, kitchen.Send, 1)
	assert.Len(t, rider.Send, 0)
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := startHub(t)
	slow := join(t, h, "rider", 1)

	h.Deliver([]string{"rider"}, []byte("1"))
	h.Deliver([]string{"rider"}, []byte("2"))

	require.Len(t, slow.Send, 1)
	assert.Equal(t, []byte("1"), <-slow.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := join(t, h, "admin", 1)

	h.unregister <- c
	require.Eventually(t, func() bool { return h.ConnectionCount("admin") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}
