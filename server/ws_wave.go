package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"voxcollect/logger"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// waveHub relays live soundwave frames from one publisher (the collect
// client) to any number of observers. Frames are fire-and-forget: an
// observer that cannot keep up just misses frames.
type waveHub struct {
	mu        sync.Mutex
	observers map[*websocket.Conn]chan []byte
}

func newWaveHub() *waveHub {
	return &waveHub{observers: make(map[*websocket.Conn]chan []byte)}
}

func (h *waveHub) add(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.observers[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *waveHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.observers[conn]; ok {
		delete(h.observers, conn)
		close(ch)
	}
	h.mu.Unlock()
}

// broadcast hands a frame to every observer without blocking. Full
// observer queues drop the frame.
func (h *waveHub) broadcast(frame []byte) {
	h.mu.Lock()
	for _, ch := range h.observers {
		select {
		case ch <- frame:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *waveHub) observerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// WaveSocketHandler upgrades the connection and joins the wave relay.
// ?role=publish marks the connection as the frame source; everything
// else observes.
func (h *APIHandler) WaveSocketHandler(hub *waveHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", logger.ErrorField(err))
			return
		}
		defer conn.Close()

		if r.URL.Query().Get("role") == "publish" {
			logger.Info("wave publisher connected", logger.String("remote", r.RemoteAddr))
			for {
				msgType, frame, err := conn.ReadMessage()
				if err != nil {
					logger.Info("wave publisher disconnected")
					return
				}
				if msgType == websocket.BinaryMessage {
					hub.broadcast(frame)
				}
			}
		}

		logger.Info("wave observer connected", logger.String("remote", r.RemoteAddr))
		ch := hub.add(conn)
		defer hub.remove(conn)
		for frame := range ch {
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		}
	}
}
