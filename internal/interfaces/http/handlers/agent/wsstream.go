// Package agent exposes the WebSocket endpoint agents connect to.
package agent

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/helios-home/helios/internal/protocol"
)

// maxFrameSize bounds a single control-plane frame.
const maxFrameSize = 64 * 1024

// wsStream adapts a gorilla WebSocket connection to the protocol's frame
// transport. Control frames are handled by the library; a binary data frame is
// a protocol violation and surfaces as ErrBinaryFrame.
type wsStream struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	once    sync.Once
}

func newWSStream(conn *websocket.Conn) *wsStream {
	conn.SetReadLimit(maxFrameSize)
	return &wsStream{conn: conn}
}

func (s *wsStream) ReadFrame(ctx context.Context) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			return "", err
		}
	}

	msgType, data, err := s.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	if msgType != websocket.TextMessage {
		return "", protocol.ErrBinaryFrame
	}
	return string(data), nil
}

func (s *wsStream) WriteFrame(_ context.Context, frame string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (s *wsStream) Close() error {
	var err error
	s.once.Do(func() { err = s.conn.Close() })
	return err
}
