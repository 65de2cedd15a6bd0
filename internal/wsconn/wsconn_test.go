package wsconn

import (
	"context"
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

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

// echoServer upgrades every connection and records every frame it reads
// for the test to inspect; it writes nothing back.
func echoServer(t *testing.T, received *[]string, mu *sync.Mutex) *httptest.Server {
	upgrader := websocket.Upgrader{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mu.Lock()
			*received = append(*received, string(msg))
			mu.Unlock()
		}
	})
	return httptest.NewServer(handler)
}

func TestSubscribeSendsFrameOnLiveConnection(t *testing.T) {
	var received []string
	var mu sync.Mutex
	ts := echoServer(t, &received, &mu)
	defer ts.Close()

	var gotMessages int
	c := New("test-venue", wsURL(ts), func(msg []byte) { gotMessages++ })
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Subscribe(map[string]string{"op": "subscribe", "channel": "ticker"}))

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	count := len(received)
	mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestCloseStopsReconnectLoop(t *testing.T) {
	var received []string
	var mu sync.Mutex
	ts := echoServer(t, &received, &mu)
	defer ts.Close()

	c := New("test-venue", wsURL(ts), func(msg []byte) {})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, c.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestSendDoesNotPersistForReplay(t *testing.T) {
	var received []string
	var mu sync.Mutex
	ts := echoServer(t, &received, &mu)
	defer ts.Close()

	c := New("test-venue", wsURL(ts), func(msg []byte) {})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Send(map[string]string{"op": "unsubscribe"}))

	c.mu.Lock()
	subCount := len(c.subs)
	c.mu.Unlock()
	assert.Equal(t, 0, subCount)
}
