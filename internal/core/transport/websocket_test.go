package transport

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/internal/core/observability/log"
)

func TestWebSocketAcceptAndExchange(t *testing.T) {
	l, err := ListenWebSocket("127.0.0.1:0", time.Second, log.Nop())
	require.NoError(t, err)
	defer l.Close()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	client, _, err := dialer.Dial("ws://"+l.Addr()+"/sync", nil)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := l.Accept(ctx)
	require.NoError(t, err)
	defer conn.Close()

	// Client to server.
	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, []byte("hello")))
	require.Eventually(t, func() bool {
		for _, pkt := range conn.Poll() {
			if string(pkt) == "hello" {
				return true
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)

	// Server to client.
	require.NoError(t, conn.Send([]byte("world")))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
}

func TestWebSocketAcceptHonorsContext(t *testing.T) {
	l, err := ListenWebSocket("127.0.0.1:0", time.Second, log.Nop())
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = l.Accept(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
