package viz

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"voxcollect/logger"

	"github.com/gorilla/websocket"
)

// TerminalRenderer draws a one-line amplitude bar for each frame,
// rewriting the line in place.
type TerminalRenderer struct {
	W io.Writer
}

var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

func (r *TerminalRenderer) RenderFrame(bins []byte) {
	var b strings.Builder
	b.WriteString("\r")
	for _, v := range bins {
		b.WriteRune(barGlyphs[int(v)*(len(barGlyphs)-1)/255])
	}
	fmt.Fprint(r.W, b.String())
}

// WSRenderer mirrors wave frames to the collection server so a session
// can be observed remotely. Frame delivery is best effort: a broken
// connection silently stops mirroring.
type WSRenderer struct {
	mu   sync.Mutex
	conn *websocket.Conn
	dead bool
}

// NewWSRenderer dials the server's wave endpoint as a publisher.
func NewWSRenderer(wsURL string) (*WSRenderer, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wave endpoint: %w", err)
	}
	return &WSRenderer{conn: conn}, nil
}

func (r *WSRenderer) RenderFrame(bins []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return
	}
	if err := r.conn.WriteMessage(websocket.BinaryMessage, bins); err != nil {
		logger.Debug("wave mirror write failed", logger.ErrorField(err))
		r.dead = true
	}
}

// Close shuts the mirror connection.
func (r *WSRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dead = true
	return r.conn.Close()
}

// MultiRenderer fans each frame out to several renderers.
type MultiRenderer []Renderer

func (m MultiRenderer) RenderFrame(bins []byte) {
	for _, r := range m {
		r.RenderFrame(bins)
	}
}
