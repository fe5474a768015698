package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub, dealID int64) *websocket.Conn {
	t.Helper()

	upgr := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Join(dealID, ws)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.Eventually(t, func() bool {
		return hub.RoomSize(dealID) == 1
	}, time.Second, 10*time.Millisecond)

	return client
}

func TestBroadcastConcurrentWriters(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	client := dialHub(t, hub, 1)

	// Many goroutines broadcasting into one room; all frames must be
	// funneled through the connection's write loop.
	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				hub.Broadcast(1, map[string]int{"writer": n, "seq": j})
			}
		}(i)
	}

	received := 0
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for received < writers*perWriter {
		if _, _, err := client.ReadMessage(); err != nil {
			break
		}
		received++
	}
	wg.Wait()

	assert.Greater(t, received, 0)
}

func TestJoinLeave(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	dialHub(t, hub, 7)

	hub.mutex.RLock()
	var sub *Connection
	for c := range hub.rooms[7] {
		sub = c
	}
	hub.mutex.RUnlock()
	require.NotNil(t, sub)

	hub.Leave(sub)
	assert.Equal(t, 0, hub.RoomSize(7))

	// a second Leave on the same connection is a no-op
	hub.Leave(sub)
	assert.Equal(t, 0, hub.RoomSize(7))
}

func TestBroadcastEmptyRoom(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	hub.Broadcast(42, map[string]string{"text": "nobody listening"})
	assert.Equal(t, 0, hub.RoomSize(42))
}
