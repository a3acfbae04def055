package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxcollect/config"
)

func newWaveServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	handler := NewAPIHandler(&fakePromptRepo{}, &fakeUtteranceRepo{}, &fakeAudioStore{}, &fakeTokenStore{}, &config.Config{})
	srv := httptest.NewServer(newRouter(handler))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/wave"
	return srv, wsURL
}

func TestWaveRelayPublisherToObserver(t *testing.T) {
	_, wsURL := newWaveServer(t)

	observer, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer observer.Close()

	publisher, _, err := websocket.DefaultDialer.Dial(wsURL+"?role=publish", nil)
	require.NoError(t, err)
	defer publisher.Close()

	// The observer registers asynchronously after the upgrade; retry the
	// first frame until it lands.
	frame := []byte{1, 2, 3, 4}
	received := make(chan []byte, 1)
	go func() {
		_, msg, err := observer.ReadMessage()
		if err == nil {
			received <- msg
		}
	}()

	deadline := time.After(2 * time.Second)
	for {
		require.NoError(t, publisher.WriteMessage(websocket.BinaryMessage, frame))
		select {
		case msg := <-received:
			assert.Equal(t, frame, msg)
			return
		case <-deadline:
			t.Fatal("observer never received a frame")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestWaveHubDropsFramesForSlowObservers(t *testing.T) {
	hub := newWaveHub()
	conn := &websocket.Conn{}
	ch := hub.add(conn)

	// Fill the queue past capacity; broadcast must not block.
	for i := 0; i < cap(ch)+10; i++ {
		hub.broadcast([]byte{byte(i)})
	}
	assert.Len(t, ch, cap(ch))

	hub.remove(conn)
	assert.Zero(t, hub.observerCount())
	hub.remove(conn) // idempotent
}
